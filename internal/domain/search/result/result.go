package result

import (
	"math"

	"github.com/kailas-cloud/recipedex/internal/domain/recipe"
)

// Result is a single ranked recipe with its score breakdown.
type Result struct {
	recipe            recipe.Recipe
	lexical           float64
	lexicalNormalized float64
	ingredient        float64
	combined          float64
}

// New creates a search result.
func New(r recipe.Recipe, lexical, lexicalNormalized, ingredient, combined float64) Result {
	return Result{
		recipe:            r,
		lexical:           lexical,
		lexicalNormalized: lexicalNormalized,
		ingredient:        ingredient,
		combined:          combined,
	}
}

// Recipe returns the ranked recipe.
func (r *Result) Recipe() *recipe.Recipe { return &r.recipe }

// Lexical returns the raw BM25 score.
func (r *Result) Lexical() float64 { return r.lexical }

// LexicalNormalized returns the min-max normalized BM25 score in [0,1].
func (r *Result) LexicalNormalized() float64 { return r.lexicalNormalized }

// Ingredient returns the fraction of include terms matched, in [0,1].
func (r *Result) Ingredient() float64 { return r.ingredient }

// Combined returns alpha*LexicalNormalized + beta*Ingredient.
func (r *Result) Combined() float64 { return r.combined }

// DisplayScore returns Combined rounded to three decimals.
func (r *Result) DisplayScore() float64 { return Round3(r.combined) }

// Round3 rounds x to three decimal places.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
