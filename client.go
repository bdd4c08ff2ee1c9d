package recipedex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/corpus"
	dbRedis "github.com/kailas-cloud/recipedex/internal/db/redis"
	domrecipe "github.com/kailas-cloud/recipedex/internal/domain/recipe"
	"github.com/kailas-cloud/recipedex/internal/ranking"
	"github.com/kailas-cloud/recipedex/internal/repository/querycache"
	recipeuc "github.com/kailas-cloud/recipedex/internal/usecase/recipe"
	searchuc "github.com/kailas-cloud/recipedex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the recipedex entry point. It is safe for concurrent use.
type Client struct {
	store     *dbRedis.Store
	searchSvc *searchuc.Service
	recipeSvc *recipeuc.Service
}

// Open loads a corpus file: a snapshot written by recipedex-cli index, or
// raw pipeline output (JSON Lines or a JSON array).
func Open(path string, opts ...Option) (*Client, error) {
	cfg := applyOptions(opts)

	n, err := analysis.New(analysis.Mode(cfg.analyzer))
	if err != nil {
		return nil, fmt.Errorf("recipedex: %w", err)
	}
	c, err := corpus.LoadFile(path, n, corpus.Options{
		Params:              cfg.params,
		IncludeInstructions: cfg.includeInstructions,
	}, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("recipedex: %w", err)
	}
	return wireClient(c, n, cfg)
}

// FromRecipes indexes recipes held in memory. Recipes without a title are rejected.
func FromRecipes(recipes []Recipe, opts ...Option) (*Client, error) {
	cfg := applyOptions(opts)

	n, err := analysis.New(analysis.Mode(cfg.analyzer))
	if err != nil {
		return nil, fmt.Errorf("recipedex: %w", err)
	}

	domRecipes := make([]domrecipe.Recipe, len(recipes))
	for i, r := range recipes {
		dr, err := domrecipe.New(r.ID, i, r.Title, r.Source, r.Ingredients, r.Instructions)
		if err != nil {
			return nil, fmt.Errorf("recipedex: recipe %d: %w", i, err)
		}
		domRecipes[i] = dr
	}

	c, err := corpus.Build(domRecipes, n, corpus.Options{
		Params:              cfg.params,
		IncludeInstructions: cfg.includeInstructions,
	})
	if err != nil {
		return nil, fmt.Errorf("recipedex: %w", err)
	}
	return wireClient(c, n, cfg)
}

func applyOptions(opts []Option) *clientConfig {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

func wireClient(c *corpus.Corpus, n *analysis.Normalizer, cfg *clientConfig) (*Client, error) {
	engine, err := ranking.New(c, n, cfg.ranking, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("recipedex: %w", err)
	}

	client := &Client{recipeSvc: recipeuc.New(c)}

	// nil interface, not a typed nil pointer, when caching is off
	var cache searchuc.Cache
	if len(cfg.cacheAddrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("recipedex: create cache store: %w", err)
		}
		if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("recipedex: cache not ready: %w", err)
		}
		client.store = store
		cache = querycache.New(store, engine.Fingerprint(), cfg.cacheTTL, nil, cfg.logger)
	}

	client.searchSvc = searchuc.New(engine, cache, cfg.defaults)
	return client, nil
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cache connectivity. It is a no-op without a cache.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Recipe returns the recipe with the given id, or ErrNotFound.
func (c *Client) Recipe(ctx context.Context, id string) (Recipe, error) {
	r, err := c.recipeSvc.Get(ctx, id)
	if err != nil {
		return Recipe{}, fmt.Errorf("recipe %q: %w", id, err)
	}
	return fromDomainRecipe(&r), nil
}

// Stats describes the loaded corpus.
func (c *Client) Stats() Stats {
	s := c.recipeSvc.Stats(context.Background())
	return Stats{
		Recipes:      s.Recipes,
		Vocabulary:   s.Vocabulary,
		AvgDocLength: s.AvgDocLength,
		Sources:      s.Sources,
		Analyzer:     Analyzer(s.Analyzer),
		Fingerprint:  s.Fingerprint,
	}
}
