// Package corpus holds the immutable, in-memory recipe collection together with
// its lexical index and ingredient line store. A Corpus is built once at startup
// and shared read-only by every query.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/domain/recipe"
	"github.com/kailas-cloud/recipedex/internal/index"
	"github.com/kailas-cloud/recipedex/internal/ingredient"
)

// Progress receives one Add(1) per recipe processed during a build.
// After the first error the build stops reporting to it.
type Progress interface {
	Add(n int) error
}

// Options controls how a corpus is built.
type Options struct {
	// Params are the BM25 constants.
	Params index.Params
	// IncludeInstructions adds instruction steps to the searchable text.
	IncludeInstructions bool
	// Progress is optional.
	Progress Progress
}

// DefaultOptions returns BM25 defaults with title + ingredients as searchable text.
func DefaultOptions() Options {
	return Options{Params: index.DefaultParams()}
}

// Stats summarizes a built corpus.
type Stats struct {
	Recipes             int
	Vocabulary          int
	AvgDocLength        float64
	EmptyDocuments      int
	RenamedIDs          int
	Sources             map[string]int
	Analyzer            analysis.Mode
	Params              index.Params
	IncludeInstructions bool
	Fingerprint         string
}

// Corpus is the ordered recipe collection plus precomputed index structures.
type Corpus struct {
	recipes  []recipe.Recipe
	lines    []ingredient.Lines
	bm25     *index.BM25
	byID     map[string]int
	analyzer analysis.Mode
	stats    Stats
}

// Build normalizes every recipe's searchable text and indexes it.
// Recipe ordinals are reassigned to their position in recipes.
func Build(recipes []recipe.Recipe, n *analysis.Normalizer, opts Options) (*Corpus, error) {
	tokenized := make([]recipe.Recipe, len(recipes))
	progress := opts.Progress
	for i := range recipes {
		r := recipes[i]
		tokenized[i] = r.WithTokens(n.Normalize(r.SearchableText(opts.IncludeInstructions)))
		if progress != nil && progress.Add(1) != nil {
			progress = nil
		}
	}
	return assemble(tokenized, n.Mode(), opts)
}

// FromTokenized indexes recipes whose tokens were computed earlier by an
// analyzer of the given mode (snapshot load).
func FromTokenized(recipes []recipe.Recipe, mode analysis.Mode, opts Options) (*Corpus, error) {
	return assemble(recipes, mode, opts)
}

func assemble(recipes []recipe.Recipe, mode analysis.Mode, opts Options) (*Corpus, error) {
	c := &Corpus{
		recipes:  make([]recipe.Recipe, len(recipes)),
		lines:    make([]ingredient.Lines, len(recipes)),
		byID:     make(map[string]int, len(recipes)),
		analyzer: mode,
	}

	sources := make(map[string]int)
	docs := make([][]string, len(recipes))
	renamed, empty := 0, 0
	h := sha256.New()

	for i := range recipes {
		r := recipes[i]
		id := r.ID()
		if _, taken := c.byID[id]; taken || id == "" {
			renamed++
			for taken || id == "" {
				id = id + "-" + strconv.Itoa(i)
				_, taken = c.byID[id]
			}
		}
		r = recipe.Reconstruct(id, i, r.Title(), r.Source(), r.Ingredients(), r.Instructions(), r.Tokens())

		c.recipes[i] = r
		c.byID[id] = i
		c.lines[i] = ingredient.NormalizeLines(r.Ingredients())
		docs[i] = r.Tokens()
		if len(docs[i]) == 0 {
			empty++
		}
		sources[r.Source()]++

		_, _ = fmt.Fprintf(h, "%s\x00%s\x00%s\x00%q\x00%q\x00%q\n",
			id, r.Title(), r.Source(), []string(c.lines[i]), r.Instructions(), docs[i])
	}

	bm25, err := index.Build(docs, opts.Params)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	c.bm25 = bm25

	_, _ = fmt.Fprintf(h, "%s|%g|%g|%t", mode, opts.Params.K1, opts.Params.B, opts.IncludeInstructions)

	c.stats = Stats{
		Recipes:             len(recipes),
		Vocabulary:          bm25.Vocabulary(),
		AvgDocLength:        bm25.AvgDocLength(),
		EmptyDocuments:      empty,
		RenamedIDs:          renamed,
		Sources:             sources,
		Analyzer:            mode,
		Params:              opts.Params,
		IncludeInstructions: opts.IncludeInstructions,
		Fingerprint:         hex.EncodeToString(h.Sum(nil))[:16],
	}
	return c, nil
}

// Len returns the number of recipes.
func (c *Corpus) Len() int { return len(c.recipes) }

// Recipe returns the recipe at ordinal i.
func (c *Corpus) Recipe(i int) *recipe.Recipe { return &c.recipes[i] }

// Lines returns the normalized ingredient lines of recipe i.
func (c *Corpus) Lines(i int) ingredient.Lines { return c.lines[i] }

// Index returns the lexical index.
func (c *Corpus) Index() *index.BM25 { return c.bm25 }

// Analyzer returns the analyzer mode the tokens were produced with.
func (c *Corpus) Analyzer() analysis.Mode { return c.analyzer }

// Get returns the recipe with the given id.
func (c *Corpus) Get(id string) (recipe.Recipe, bool) {
	i, ok := c.byID[id]
	if !ok {
		return recipe.Recipe{}, false
	}
	return c.recipes[i], true
}

// Stats returns corpus statistics. The Sources map is a copy.
func (c *Corpus) Stats() Stats {
	s := c.stats
	s.Sources = make(map[string]int, len(c.stats.Sources))
	for k, v := range c.stats.Sources {
		s.Sources[k] = v
	}
	return s
}

// Fingerprint identifies the corpus content (every recipe field and token)
// and build parameters.
func (c *Corpus) Fingerprint() string { return c.stats.Fingerprint }

// SourceNames returns the distinct provenance tags, sorted.
func (c *Corpus) SourceNames() []string {
	names := make([]string, 0, len(c.stats.Sources))
	for k := range c.stats.Sources {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
