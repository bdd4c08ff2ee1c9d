package recipedex

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/index"
	"github.com/kailas-cloud/recipedex/internal/ranking"
)

// Analyzer selects how tokens are reduced to a base form.
type Analyzer string

// Supported analyzers.
const (
	AnalyzerLemma Analyzer = Analyzer(analysis.ModeLemma)
	AnalyzerStem  Analyzer = Analyzer(analysis.ModeStem)
)

const defaultCacheTTL = 5 * time.Minute

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	analyzer            Analyzer
	includeInstructions bool
	params              index.Params
	ranking             ranking.Options
	defaults            request.Defaults

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	logger *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		analyzer: AnalyzerLemma,
		params:   index.DefaultParams(),
		ranking:  ranking.DefaultOptions(),
		defaults: request.StandardDefaults(),
		cacheTTL: defaultCacheTTL,
		logger:   zap.NewNop(),
	}
}

// WithAnalyzer selects the token analyzer. Snapshots must match it.
func WithAnalyzer(a Analyzer) Option {
	return func(c *clientConfig) {
		c.analyzer = a
	}
}

// WithInstructions adds instruction steps to the searchable text.
func WithInstructions() Option {
	return func(c *clientConfig) {
		c.includeInstructions = true
	}
}

// WithBM25 overrides the BM25 constants.
func WithBM25(k1, b float64) Option {
	return func(c *clientConfig) {
		c.params = index.Params{K1: k1, B: b}
	}
}

// WithoutAliases disables ingredient synonym matching.
func WithoutAliases() Option {
	return func(c *clientConfig) {
		c.ranking.Aliases = false
	}
}

// WithMaxTopK clamps the number of results any query can request.
func WithMaxTopK(n int) Option {
	return func(c *clientConfig) {
		c.ranking.MaxTopK = n
	}
}

// WithMinScore drops results whose combined score is below min.
func WithMinScore(minScore float64) Option {
	return func(c *clientConfig) {
		c.ranking.MinScore = minScore
	}
}

// WithDefaults sets the values used when a query leaves top_k or weights unset.
func WithDefaults(topK int, alpha, beta float64) Option {
	return func(c *clientConfig) {
		c.defaults = request.Defaults{TopK: topK, Alpha: alpha, Beta: beta}
	}
}

// WithCache stores ranked results in Valkey or Redis at addr.
// A ttl of zero keeps the default of five minutes.
func WithCache(addr, password string, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithLogger sets the logger used for load and cache diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
