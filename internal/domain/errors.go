package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals a search query that fails validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmptyQuery signals a search query with neither text nor include ingredients.
	ErrEmptyQuery = errors.New("query has neither text nor ingredients")
	// ErrCorpusNotLoaded signals that no corpus is available to search.
	ErrCorpusNotLoaded = errors.New("corpus not loaded")
	// ErrAnalyzerMismatch signals a snapshot built with a different analyzer than the running one.
	ErrAnalyzerMismatch = errors.New("analyzer mismatch")
	// ErrInvalidRecipe signals a pipeline record that cannot become a recipe.
	ErrInvalidRecipe = errors.New("invalid recipe")
)
