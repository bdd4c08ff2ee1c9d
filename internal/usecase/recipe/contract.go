package recipe

import (
	"github.com/kailas-cloud/recipedex/internal/corpus"
	domrecipe "github.com/kailas-cloud/recipedex/internal/domain/recipe"
)

// Catalog is the read-only recipe collection.
type Catalog interface {
	Get(id string) (domrecipe.Recipe, bool)
	Stats() corpus.Stats
}
