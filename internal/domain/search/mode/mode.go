package mode

// Mode is the search strategy, derived from which query parts are present.
type Mode string

// Search mode constants.
const (
	// Hybrid combines keyword relevance and ingredient overlap.
	Hybrid     Mode = "hybrid"
	Keyword    Mode = "keyword"
	Ingredient Mode = "ingredient"
	// Empty is a query with neither text nor include ingredients.
	Empty Mode = "empty"
)

// Of returns the mode for a query with the given parts.
func Of(hasText, hasIngredients bool) Mode {
	switch {
	case hasText && hasIngredients:
		return Hybrid
	case hasText:
		return Keyword
	case hasIngredients:
		return Ingredient
	default:
		return Empty
	}
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Keyword || m == Ingredient || m == Empty
}
