package querycache

import (
	"github.com/kailas-cloud/recipedex/internal/domain/recipe"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
)

// cachedResult is the stored form of one ranked recipe.
type cachedResult struct {
	ID                string   `json:"id"`
	Ordinal           int      `json:"ordinal"`
	Title             string   `json:"title"`
	Source            string   `json:"source,omitempty"`
	Ingredients       []string `json:"ingredients"`
	Instructions      []string `json:"instructions"`
	Lexical           float64  `json:"lexical"`
	LexicalNormalized float64  `json:"lexical_normalized"`
	Ingredient        float64  `json:"ingredient"`
	Combined          float64  `json:"combined"`
}

// cachedPage is the stored value for one query.
type cachedPage struct {
	Results []cachedResult `json:"results"`
}

func toCached(results []result.Result) cachedPage {
	page := cachedPage{Results: make([]cachedResult, len(results))}
	for i := range results {
		r := &results[i]
		rec := r.Recipe()
		page.Results[i] = cachedResult{
			ID:                rec.ID(),
			Ordinal:           rec.Ordinal(),
			Title:             rec.Title(),
			Source:            rec.Source(),
			Ingredients:       rec.Ingredients(),
			Instructions:      rec.Instructions(),
			Lexical:           r.Lexical(),
			LexicalNormalized: r.LexicalNormalized(),
			Ingredient:        r.Ingredient(),
			Combined:          r.Combined(),
		}
	}
	return page
}

func fromCached(page cachedPage) []result.Result {
	out := make([]result.Result, len(page.Results))
	for i, c := range page.Results {
		rec := recipe.Reconstruct(c.ID, c.Ordinal, c.Title, c.Source, nonNil(c.Ingredients), nonNil(c.Instructions), []string{})
		out[i] = result.New(rec, c.Lexical, c.LexicalNormalized, c.Ingredient, c.Combined)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
