package request

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/recipedex/internal/domain"
	"github.com/kailas-cloud/recipedex/internal/domain/search/mode"
	"github.com/kailas-cloud/recipedex/internal/ingredient"
)

// Search parameter limits and defaults.
const (
	// MaxQueryLength is the maximum allowed search text length.
	MaxQueryLength = 4096
	// MaxTerms caps the include and exclude lists independently.
	MaxTerms     = 64
	DefaultTopK  = 10
	DefaultAlpha = 0.7
	DefaultBeta  = 0.3
)

// Params are raw, optional search parameters as received from a caller.
// Nil pointers fall back to Defaults.
type Params struct {
	Text    string
	Include []string
	Exclude []string
	TopK    *int
	Alpha   *float64
	Beta    *float64
}

// Defaults fill in parameters the caller left unset.
type Defaults struct {
	TopK  int
	Alpha float64
	Beta  float64
}

// StandardDefaults returns top_k=10, alpha=0.7, beta=0.3.
func StandardDefaults() Defaults {
	return Defaults{TopK: DefaultTopK, Alpha: DefaultAlpha, Beta: DefaultBeta}
}

// Request is a validated search query.
type Request struct {
	text    string
	include []string
	exclude []string
	topK    int
	alpha   float64
	beta    float64
}

// New validates p and applies d for unset fields. Ingredient terms are
// trimmed, lowercased and deduplicated in first-seen order; blanks are dropped.
// An empty request (no text, no include terms) is valid here.
func New(p Params, d Defaults) (Request, error) {
	text := strings.TrimSpace(p.Text)
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}

	include := cleanTerms(p.Include)
	exclude := cleanTerms(p.Exclude)
	if len(include) > MaxTerms || len(exclude) > MaxTerms {
		return Request{}, fmt.Errorf("%w: too many ingredients (max %d)", domain.ErrInvalidQuery, MaxTerms)
	}

	topK, alpha, beta := d.TopK, d.Alpha, d.Beta
	if p.TopK != nil {
		topK = *p.TopK
	}
	if p.Alpha != nil {
		alpha = *p.Alpha
	}
	if p.Beta != nil {
		beta = *p.Beta
	}

	if topK <= 0 {
		return Request{}, fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidQuery)
	}
	if !validWeight(alpha) {
		return Request{}, fmt.Errorf("%w: alpha must be a non-negative number", domain.ErrInvalidQuery)
	}
	if !validWeight(beta) {
		return Request{}, fmt.Errorf("%w: beta must be a non-negative number", domain.ErrInvalidQuery)
	}

	return Request{
		text:    text,
		include: include,
		exclude: exclude,
		topK:    topK,
		alpha:   alpha,
		beta:    beta,
	}, nil
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

// cleanTerms lowercases and trims terms, dropping duplicates and terms with
// no letters or digits left to match.
func cleanTerms(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		key := ingredient.NormalizeTerm(t)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Text returns the free-text query (may be empty).
func (r *Request) Text() string { return r.text }

// Include returns the pantry ingredients to reward.
func (r *Request) Include() []string { return r.include }

// Exclude returns the ingredients that disqualify a recipe.
func (r *Request) Exclude() []string { return r.exclude }

// TopK returns the requested result count.
func (r *Request) TopK() int { return r.topK }

// Alpha returns the lexical weight.
func (r *Request) Alpha() float64 { return r.alpha }

// Beta returns the ingredient weight.
func (r *Request) Beta() float64 { return r.beta }

// IsEmpty reports a query with neither text nor include ingredients.
func (r *Request) IsEmpty() bool { return r.text == "" && len(r.include) == 0 }

// Mode derives the search strategy from the query parts.
func (r *Request) Mode() mode.Mode { return mode.Of(r.text != "", len(r.include) > 0) }

// CacheKey returns a canonical string identifying the request's results.
// Ingredient order does not affect the key.
func (r *Request) CacheKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "q=%s|k=%d|a=%g|b=%g|i=", r.text, r.topK, r.alpha, r.beta)
	b.WriteString(strings.Join(sortedCopy(r.include), ","))
	b.WriteString("|x=")
	b.WriteString(strings.Join(sortedCopy(r.exclude), ","))
	return b.String()
}

func sortedCopy(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}
