package recipedex

import "github.com/kailas-cloud/recipedex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrEmptyQuery       = domain.ErrEmptyQuery
	ErrAnalyzerMismatch = domain.ErrAnalyzerMismatch
	ErrInvalidRecipe    = domain.ErrInvalidRecipe
)
