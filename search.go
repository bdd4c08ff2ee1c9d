package recipedex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
)

// SearchOptions refine a text query. A zero TopK takes the client default.
// Alpha and Beta are applied as a pair; when both are zero the client defaults
// apply unless Weights is set.
type SearchOptions struct {
	Include []string
	Exclude []string
	TopK    int
	Alpha   float64
	Beta    float64
	Weights bool
}

// Search ranks recipes against text and the ingredient constraints in opts.
// A query with neither text nor include ingredients returns ErrEmptyQuery.
func (c *Client) Search(ctx context.Context, text string, opts *SearchOptions) ([]Hit, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	p := request.Params{
		Text:    text,
		Include: opts.Include,
		Exclude: opts.Exclude,
	}
	if opts.TopK != 0 {
		topK := opts.TopK
		p.TopK = &topK
	}
	if opts.Weights || opts.Alpha != 0 || opts.Beta != 0 {
		alpha, beta := opts.Alpha, opts.Beta
		p.Alpha, p.Beta = &alpha, &beta
	}

	results, err := c.searchSvc.Search(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromResults(results), nil
}
