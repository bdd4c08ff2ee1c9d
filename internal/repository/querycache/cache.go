// Package querycache stores ranked search results in a key-value store,
// keyed by engine fingerprint and canonical request.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recipedex/internal/db"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "recipedex:search:"

// store is the consumer interface for the query cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
}

// Cache is a read-through helper for the search use case. Store failures are
// logged and reported as misses; they never fail a search.
type Cache struct {
	store       store
	fingerprint string
	ttl         time.Duration
	cacheTotal  *prometheus.CounterVec
	logger      *zap.Logger
}

// New creates a query cache. fingerprint identifies the corpus content and
// ranking options, so a rebuilt corpus or a differently tuned engine never
// shares entries with this one. cacheTotal has label "result" and may be nil.
func New(
	s store,
	fingerprint string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		store:       s,
		fingerprint: fingerprint,
		ttl:         ttl,
		cacheTotal:  cacheTotal,
		logger:      logger,
	}
}

// Get returns cached results for req.
func (c *Cache) Get(ctx context.Context, req *request.Request) ([]result.Result, bool) {
	key := c.key(req)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.inc("miss")
		} else {
			c.inc("error")
			c.logger.Warn("Failed to get cached results", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var page cachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		c.inc("error")
		c.logger.Warn("Failed to parse cached results", zap.String("key", key), zap.Error(err))
		// drop the entry so the next Put replaces it
		if _, derr := c.store.Del(ctx, key); derr != nil {
			c.logger.Warn("Failed to drop corrupt cache entry", zap.String("key", key), zap.Error(derr))
		}
		return nil, false
	}

	c.inc("hit")
	return fromCached(page), true
}

// Put stores results for req.
func (c *Cache) Put(ctx context.Context, req *request.Request, results []result.Result) {
	key := c.key(req)

	data, err := json.Marshal(toCached(results))
	if err != nil {
		c.logger.Warn("Failed to encode results for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.inc("error")
		c.logger.Warn("Failed to cache results", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(res string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(res).Inc()
	}
}

func (c *Cache) key(req *request.Request) string {
	h := sha256.Sum256([]byte(req.CacheKey()))
	return KeyPrefix + c.fingerprint + ":" + hex.EncodeToString(h[:16])
}
