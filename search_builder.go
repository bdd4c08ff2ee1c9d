package recipedex

import "context"

// SearchBuilder is a fluent builder for search queries.
type SearchBuilder struct {
	client *Client
	text   string
	opts   SearchOptions
}

// Find starts a query.
func (c *Client) Find() *SearchBuilder {
	return &SearchBuilder{client: c}
}

// Text sets the free-text part of the query.
func (b *SearchBuilder) Text(q string) *SearchBuilder {
	b.text = q
	return b
}

// With adds ingredients the recipe should contain.
func (b *SearchBuilder) With(ingredients ...string) *SearchBuilder {
	b.opts.Include = append(b.opts.Include, ingredients...)
	return b
}

// Without adds ingredients the recipe must not contain.
func (b *SearchBuilder) Without(ingredients ...string) *SearchBuilder {
	b.opts.Exclude = append(b.opts.Exclude, ingredients...)
	return b
}

// Weights sets the lexical (alpha) and ingredient (beta) weights.
func (b *SearchBuilder) Weights(alpha, beta float64) *SearchBuilder {
	b.opts.Alpha = alpha
	b.opts.Beta = beta
	b.opts.Weights = true
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.opts.TopK = n
	return b
}

// Do executes the query.
func (b *SearchBuilder) Do(ctx context.Context) ([]Hit, error) {
	opts := b.opts
	return b.client.Search(ctx, b.text, &opts)
}
