package recipe

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recipedex/internal/corpus"
	"github.com/kailas-cloud/recipedex/internal/domain"
	domrecipe "github.com/kailas-cloud/recipedex/internal/domain/recipe"
)

// Service serves recipe lookups and corpus statistics.
type Service struct {
	catalog Catalog
}

// New creates a recipe service.
func New(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Get returns the recipe with the given id.
func (s *Service) Get(_ context.Context, id string) (domrecipe.Recipe, error) {
	r, ok := s.catalog.Get(id)
	if !ok {
		return domrecipe.Recipe{}, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// Stats returns corpus statistics.
func (s *Service) Stats(_ context.Context) corpus.Stats {
	return s.catalog.Stats()
}
