package search

import (
	"context"

	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
)

// Engine ranks the corpus for a validated request.
type Engine interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// Cache stores ranked results per request. Implementations swallow store failures.
type Cache interface {
	Get(ctx context.Context, req *request.Request) ([]result.Result, bool)
	Put(ctx context.Context, req *request.Request, results []result.Result)
}
