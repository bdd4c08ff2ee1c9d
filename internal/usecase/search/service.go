package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipedex/internal/domain"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
	"github.com/kailas-cloud/recipedex/internal/logger"
	"github.com/kailas-cloud/recipedex/internal/metrics"
)

// Service validates search parameters, consults the query cache and runs the ranking engine.
type Service struct {
	engine   Engine
	cache    Cache
	defaults request.Defaults
}

// New creates a search service. cache can be nil.
func New(engine Engine, cache Cache, defaults request.Defaults) *Service {
	return &Service{engine: engine, cache: cache, defaults: defaults}
}

// Defaults returns the values applied to unset parameters.
func (s *Service) Defaults() request.Defaults { return s.defaults }

// Search ranks recipes for p. A query with neither text nor include
// ingredients is rejected with domain.ErrEmptyQuery.
func (s *Service) Search(ctx context.Context, p request.Params) ([]result.Result, error) {
	req, err := request.New(p, s.defaults)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("invalid", "invalid").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}
	m := string(req.Mode())
	if req.IsEmpty() {
		metrics.SearchRequestsTotal.WithLabelValues(m, "invalid").Inc()
		return nil, domain.ErrEmptyQuery
	}

	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues(m).Observe(time.Since(start).Seconds())
	}()

	log := logger.FromContext(ctx)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, &req); ok {
			s.observe(m, "cached", len(cached))
			log.Debug("Search served from cache", zap.String("mode", m), zap.Int("results", len(cached)))
			return cached, nil
		}
	}

	results, err := s.engine.Search(ctx, &req)
	if err != nil {
		status := "error"
		if errors.Is(err, domain.ErrInvalidQuery) {
			status = "invalid"
		}
		metrics.SearchRequestsTotal.WithLabelValues(m, status).Inc()
		return nil, fmt.Errorf("rank recipes: %w", err)
	}

	if s.cache != nil {
		s.cache.Put(ctx, &req, results)
	}

	s.observe(m, "ok", len(results))
	log.Debug("Search ranked",
		zap.String("mode", m),
		zap.Int("include", len(req.Include())),
		zap.Int("exclude", len(req.Exclude())),
		zap.Int("top_k", req.TopK()),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func (s *Service) observe(mode, status string, n int) {
	metrics.SearchRequestsTotal.WithLabelValues(mode, status).Inc()
	metrics.SearchResults.Observe(float64(n))
}
