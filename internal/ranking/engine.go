// Package ranking scores every recipe of a corpus against a query by fusing
// BM25 relevance with ingredient overlap, then filters, sorts and truncates.
package ranking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/corpus"
	"github.com/kailas-cloud/recipedex/internal/domain"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
	"github.com/kailas-cloud/recipedex/internal/index"
	"github.com/kailas-cloud/recipedex/internal/ingredient"
	"github.com/kailas-cloud/recipedex/internal/metrics"
)

// Ranking defaults.
const (
	DefaultMaxTopK  = 100
	DefaultMinScore = 1e-9

	// cancelCheckEvery is how many recipes are scored between context checks.
	cancelCheckEvery = 4096
)

// Options tune the engine.
type Options struct {
	// MaxTopK clamps the requested top_k.
	MaxTopK int
	// MinScore drops results whose combined score is below it. Zero keeps everything.
	MinScore float64
	// Aliases expands ingredient terms to their synonym groups.
	Aliases bool
}

// DefaultOptions returns MaxTopK=100, MinScore=1e-9 and aliases on.
func DefaultOptions() Options {
	return Options{MaxTopK: DefaultMaxTopK, MinScore: DefaultMinScore, Aliases: true}
}

// Engine ranks recipes of a single immutable corpus. It is safe for concurrent use.
type Engine struct {
	corpus     *corpus.Corpus
	normalizer *analysis.Normalizer
	matcher    *ingredient.Matcher
	opts       Options
	logger     *zap.Logger

	// scoreFn is replaced in tests to simulate a failing recipe.
	scoreFn func(lines ingredient.Lines, include, exclude ingredient.TermSet) (float64, bool)
}

// New creates an engine. The normalizer must run the analyzer the corpus tokens were built with.
func New(c *corpus.Corpus, n *analysis.Normalizer, opts Options, logger *zap.Logger) (*Engine, error) {
	if c == nil {
		return nil, domain.ErrCorpusNotLoaded
	}
	if c.Analyzer() != n.Mode() {
		return nil, fmt.Errorf("%w: corpus %q, query %q", domain.ErrAnalyzerMismatch, c.Analyzer(), n.Mode())
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = DefaultMaxTopK
	}
	if opts.MinScore < 0 {
		opts.MinScore = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		corpus:     c,
		normalizer: n,
		matcher:    ingredient.NewMatcher(opts.Aliases),
		opts:       opts,
		logger:     logger,
		scoreFn:    scoreIngredients,
	}, nil
}

// Fingerprint identifies the corpus together with every option that changes
// which recipes a query returns. Results are only reusable under the same value.
func (e *Engine) Fingerprint() string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|aliases=%t|min=%g|max=%d",
		e.corpus.Fingerprint(), e.opts.Aliases, e.opts.MinScore, e.opts.MaxTopK))
	return hex.EncodeToString(h[:8])
}

// Corpus returns the corpus being searched.
func (e *Engine) Corpus() *corpus.Corpus { return e.corpus }

// candidate is a recipe that survived the exclusion filter.
type candidate struct {
	doc        int
	lexical    float64
	ingredient float64
}

// Search returns at most min(top_k, MaxTopK, N) results ordered by combined
// score descending, ties broken by corpus ordinal ascending. A query with
// no text tokens and no matchable include terms yields an empty result.
func (e *Engine) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if req.TopK() <= 0 || req.Alpha() < 0 || req.Beta() < 0 {
		return nil, fmt.Errorf("%w: top_k must be positive and weights non-negative", domain.ErrInvalidQuery)
	}

	n := e.corpus.Len()
	if req.IsEmpty() || n == 0 {
		return []result.Result{}, nil
	}

	tokens := e.normalizer.Normalize(req.Text())
	include := e.matcher.TermSet(req.Include())
	if len(tokens) == 0 && include.IsEmpty() {
		return []result.Result{}, nil
	}
	exclude := e.matcher.TermSet(req.Exclude())

	var lexical []float64
	if len(tokens) > 0 {
		lexical = e.corpus.Index().Scores(tokens)
	}

	candidates := make([]candidate, 0, n)
	for i := 0; i < n; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("rank: %w", err)
			}
		}
		ing, keep, ok := e.scoreSafe(i, include, exclude)
		if !ok || !keep {
			continue
		}
		c := candidate{doc: i, ingredient: ing}
		if lexical != nil {
			c.lexical = lexical[i]
		}
		candidates = append(candidates, c)
	}

	raw := make([]float64, len(candidates))
	for i := range candidates {
		raw[i] = candidates[i].lexical
	}
	norm := index.MinMax(raw)

	results := make([]result.Result, 0, len(candidates))
	for i, c := range candidates {
		combined := req.Alpha()*norm[i] + req.Beta()*c.ingredient
		if combined < e.opts.MinScore {
			continue
		}
		results = append(results, result.New(*e.corpus.Recipe(c.doc), c.lexical, norm[i], c.ingredient, combined))
	}

	sort.Slice(results, func(a, b int) bool {
		ca, cb := results[a].Combined(), results[b].Combined()
		if ca != cb {
			return ca > cb
		}
		return results[a].Recipe().Ordinal() < results[b].Recipe().Ordinal()
	})

	if k := e.limit(req.TopK()); len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (e *Engine) limit(topK int) int {
	k := topK
	if k > e.opts.MaxTopK {
		k = e.opts.MaxTopK
	}
	if n := e.corpus.Len(); k > n {
		k = n
	}
	return k
}

// scoreSafe scores one recipe. A panic drops the recipe instead of failing the query.
func (e *Engine) scoreSafe(doc int, include, exclude ingredient.TermSet) (score float64, keep, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ScoringFailuresTotal.Inc()
			e.logger.Error("Scoring failed, recipe dropped",
				zap.String("recipe_id", e.corpus.Recipe(doc).ID()),
				zap.Any("panic", r),
			)
			score, keep, ok = 0, false, false
		}
	}()
	score, keep = e.scoreFn(e.corpus.Lines(doc), include, exclude)
	return score, keep, true
}

func scoreIngredients(lines ingredient.Lines, include, exclude ingredient.TermSet) (float64, bool) {
	if ingredient.Excluded(lines, exclude) {
		return 0, false
	}
	return ingredient.Score(lines, include), true
}
