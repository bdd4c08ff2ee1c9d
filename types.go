package recipedex

import (
	domrecipe "github.com/kailas-cloud/recipedex/internal/domain/recipe"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
)

// Recipe is one recipe of the corpus.
type Recipe struct {
	ID           string
	Title        string
	Source       string
	Ingredients  []string
	Instructions []string
}

// Hit is one ranked search result.
type Hit struct {
	Recipe Recipe
	// Score is the combined score rounded to three decimals.
	Score float64
	// Lexical is the raw BM25 score.
	Lexical float64
	// LexicalNormalized is the BM25 score after min-max normalization.
	LexicalNormalized float64
	// Ingredient is the fraction of requested ingredients found.
	Ingredient float64
}

// Stats describes the loaded corpus.
type Stats struct {
	Recipes      int
	Vocabulary   int
	AvgDocLength float64
	Sources      map[string]int
	Analyzer     Analyzer
	Fingerprint  string
}

func fromDomainRecipe(r *domrecipe.Recipe) Recipe {
	return Recipe{
		ID:           r.ID(),
		Title:        r.Title(),
		Source:       r.Source(),
		Ingredients:  r.Ingredients(),
		Instructions: r.Instructions(),
	}
}

func fromResults(results []result.Result) []Hit {
	hits := make([]Hit, len(results))
	for i := range results {
		r := &results[i]
		hits[i] = Hit{
			Recipe:            fromDomainRecipe(r.Recipe()),
			Score:             r.DisplayScore(),
			Lexical:           r.Lexical(),
			LexicalNormalized: r.LexicalNormalized(),
			Ingredient:        r.Ingredient(),
		}
	}
	return hits
}
