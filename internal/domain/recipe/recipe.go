package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recipedex/internal/domain"
)

// MaxTitleLength is the maximum recipe title length in bytes.
const MaxTitleLength = 1024

// Recipe is an indexed recipe (immutable value object).
type Recipe struct {
	id           string
	ordinal      int
	title        string
	source       string
	ingredients  []string
	instructions []string
	tokens       []string
}

// New validates and creates a Recipe. Title is required; ingredient and
// instruction sequences may be empty.
func New(id string, ordinal int, title, source string, ingredients, instructions []string) (Recipe, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Recipe{}, fmt.Errorf("%w: title is required", domain.ErrInvalidRecipe)
	}
	if len(title) > MaxTitleLength {
		return Recipe{}, fmt.Errorf("%w: title too long (max %d)", domain.ErrInvalidRecipe, MaxTitleLength)
	}
	if ordinal < 0 {
		return Recipe{}, fmt.Errorf("%w: negative ordinal %d", domain.ErrInvalidRecipe, ordinal)
	}
	if id == "" {
		id = strconv.Itoa(ordinal)
	}

	return Recipe{
		id:           id,
		ordinal:      ordinal,
		title:        title,
		source:       source,
		ingredients:  cloneStrings(ingredients),
		instructions: cloneStrings(instructions),
	}, nil
}

// Reconstruct creates a Recipe without validation (snapshot hydration).
func Reconstruct(
	id string, ordinal int, title, source string,
	ingredients, instructions, tokens []string,
) Recipe {
	return Recipe{
		id: id, ordinal: ordinal, title: title, source: source,
		ingredients: ingredients, instructions: instructions, tokens: tokens,
	}
}

// WithTokens returns a copy carrying the normalized token sequence.
func (r Recipe) WithTokens(tokens []string) Recipe {
	r.tokens = cloneStrings(tokens)
	return r
}

// ID returns the stable recipe identifier.
func (r *Recipe) ID() string { return r.id }

// Ordinal returns the corpus insertion position.
func (r *Recipe) Ordinal() int { return r.ordinal }

// Title returns the recipe title.
func (r *Recipe) Title() string { return r.title }

// Source returns the dataset provenance tag.
func (r *Recipe) Source() string { return r.source }

// Ingredients returns the verbatim ingredient lines in original order.
func (r *Recipe) Ingredients() []string { return r.ingredients }

// Instructions returns the instruction steps in original order.
func (r *Recipe) Instructions() []string { return r.instructions }

// Tokens returns the normalized searchable tokens (duplicates retained).
func (r *Recipe) Tokens() []string { return r.tokens }

// SearchableText joins the title and ingredient lines, optionally followed by instructions.
func (r *Recipe) SearchableText(withInstructions bool) string {
	parts := make([]string, 0, 1+len(r.ingredients)+len(r.instructions))
	parts = append(parts, r.title)
	parts = append(parts, r.ingredients...)
	if withInstructions {
		parts = append(parts, r.instructions...)
	}
	return strings.Join(parts, "\n")
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
