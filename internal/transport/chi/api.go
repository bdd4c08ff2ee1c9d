package chi

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeQueryEmpty         ErrorCode = "query_empty"
	CodeRecipeNotFound     ErrorCode = "recipe_not_found"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
	CodeTimeout            ErrorCode = "timeout"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Text               string   `json:"text"`
	IncludeIngredients []string `json:"include_ingredients,omitempty"`
	ExcludeIngredients []string `json:"exclude_ingredients,omitempty"`
	TopK               *int     `json:"top_k,omitempty"`
	Alpha              *float64 `json:"alpha,omitempty"`
	Beta               *float64 `json:"beta,omitempty"`
}

// SearchParams are the query parameters of GET /api/search.
type SearchParams struct {
	Q           *string
	Ingredients *[]string
	Exclude     *[]string
	TopK        *int
	Alpha       *float64
	Beta        *float64
}

// SearchResultItem is one ranked recipe.
type SearchResultItem struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Source            string   `json:"source,omitempty"`
	Ingredients       []string `json:"ingredients"`
	Instructions      []string `json:"instructions"`
	Score             float64  `json:"score"`
	LexicalScore      float64  `json:"lexical_score"`
	LexicalNormalized float64  `json:"lexical_normalized"`
	IngredientScore   float64  `json:"ingredient_score"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
	Count   int                `json:"count"`
}

// RecipeResponse is the body of GET /api/recipes/{id}.
type RecipeResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Source       string   `json:"source,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// CorpusResponse is the body of GET /api/corpus.
type CorpusResponse struct {
	Recipes             int            `json:"recipes"`
	Vocabulary          int            `json:"vocabulary"`
	AvgDocLength        float64        `json:"avg_doc_length"`
	EmptyDocuments      int            `json:"empty_documents"`
	Sources             map[string]int `json:"sources"`
	Analyzer            string         `json:"analyzer"`
	IncludeInstructions bool           `json:"include_instructions"`
	K1                  float64        `json:"k1"`
	B                   float64        `json:"b"`
	Fingerprint         string         `json:"fingerprint"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Recipes int               `json:"recipes"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}
