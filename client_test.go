package recipedex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func kitchen() []Recipe {
	return []Recipe{
		{ID: "A", Title: "Avocado Toast", Source: "test", Ingredients: []string{"1 ripe avocado", "2 slices bread"}},
		{ID: "B", Title: "Egg Fried Rice", Source: "test", Ingredients: []string{"1 cup rice", "2 eggs"}},
		{ID: "C", Title: "Rice Pudding", Source: "test", Ingredients: []string{"1 cup rice", "2 cups milk", "sugar"}},
		{ID: "E", Title: "Tomato Salad", Source: "test", Ingredients: []string{"3 tomatoes", "2 green onions", "salt"}},
	}
}

func newKitchenClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := FromRecipes(kitchen(), opts...)
	if err != nil {
		t.Fatalf("FromRecipes: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func hitIDs(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Recipe.ID
	}
	return out
}

func TestFromRecipes_Search(t *testing.T) {
	c := newKitchenClient(t)

	hits, err := c.Search(context.Background(), "fried rice", &SearchOptions{TopK: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := hitIDs(hits); len(got) != 1 || got[0] != "B" {
		t.Errorf("hits = %v, want [B]", got)
	}
}

func TestSearch_IngredientsAndExclude(t *testing.T) {
	c := newKitchenClient(t)

	hits, err := c.Search(context.Background(), "", &SearchOptions{
		Include: []string{"rice"},
		Exclude: []string{"egg"},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := hitIDs(hits); len(got) != 1 || got[0] != "C" {
		t.Fatalf("hits = %v, want [C]", got)
	}
	if hits[0].Ingredient != 1 || hits[0].Score != 0.3 {
		t.Errorf("scores = ingredient %v, combined %v", hits[0].Ingredient, hits[0].Score)
	}
}

func TestSearch_ExplicitZeroWeights(t *testing.T) {
	c := newKitchenClient(t, WithMinScore(0))

	hits, err := c.Search(context.Background(), "", &SearchOptions{
		Include: []string{"avocado"},
		Weights: true,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range hits {
		if h.Score != 0 {
			t.Errorf("%s score = %v, want 0 with zero weights", h.Recipe.ID, h.Score)
		}
	}
}

func TestSearch_Aliases(t *testing.T) {
	ctx := context.Background()

	hits, err := newKitchenClient(t).Search(ctx, "", &SearchOptions{Include: []string{"scallion"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := hitIDs(hits); len(got) != 1 || got[0] != "E" {
		t.Errorf("with aliases: hits = %v, want [E]", got)
	}

	hits, err = newKitchenClient(t, WithoutAliases()).Search(ctx, "", &SearchOptions{Include: []string{"scallion"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("without aliases: hits = %v, want none", hitIDs(hits))
	}
}

func TestSearch_Errors(t *testing.T) {
	c := newKitchenClient(t)
	ctx := context.Background()

	if _, err := c.Search(ctx, "", nil); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("empty query: err = %v, want ErrEmptyQuery", err)
	}
	if _, err := c.Search(ctx, "rice", &SearchOptions{TopK: -1}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("negative top_k: err = %v, want ErrInvalidQuery", err)
	}
	if _, err := c.Search(ctx, "rice", &SearchOptions{Alpha: -1}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("negative alpha: err = %v, want ErrInvalidQuery", err)
	}
}

func TestFromRecipes_InvalidRecipe(t *testing.T) {
	_, err := FromRecipes([]Recipe{{ID: "x", Title: "  "}})
	if !errors.Is(err, ErrInvalidRecipe) {
		t.Errorf("err = %v, want ErrInvalidRecipe", err)
	}
}

func TestFromRecipes_UnknownAnalyzer(t *testing.T) {
	if _, err := FromRecipes(kitchen(), WithAnalyzer("porter")); err == nil {
		t.Error("expected error for unknown analyzer")
	}
}

func TestRecipeAndStats(t *testing.T) {
	c := newKitchenClient(t)

	r, err := c.Recipe(context.Background(), "C")
	if err != nil {
		t.Fatalf("Recipe: %v", err)
	}
	if r.Title != "Rice Pudding" || len(r.Ingredients) != 3 {
		t.Errorf("recipe = %+v", r)
	}
	if _, err := c.Recipe(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	s := c.Stats()
	if s.Recipes != 4 || s.Analyzer != AnalyzerLemma || s.Sources["test"] != 4 || s.Fingerprint == "" {
		t.Errorf("stats = %+v", s)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.jsonl")
	data := `{"id": 1, "title": "Egg Fried Rice", "ingredients": ["rice", "eggs"], "instructions": ["Fry."]}
{"id": 2, "title": "Rice Pudding", "ingredients": "['rice', 'milk']", "instructions": "Simmer."}
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Open(path, WithLogger(zap.NewNop()), WithBM25(1.2, 0.5))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	hits, err := c.Find().With("milk").Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := hitIDs(hits); len(got) != 1 || got[0] != "2" {
		t.Errorf("hits = %v, want [2]", got)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := defaultClientConfig()
	if cfg.analyzer != AnalyzerLemma || !cfg.ranking.Aliases || cfg.cacheTTL != defaultCacheTTL {
		t.Errorf("defaults = %+v", cfg)
	}

	WithAnalyzer(AnalyzerStem)(cfg)
	WithInstructions()(cfg)
	WithMaxTopK(20)(cfg)
	WithDefaults(5, 0.5, 0.5)(cfg)
	if cfg.analyzer != AnalyzerStem || !cfg.includeInstructions || cfg.ranking.MaxTopK != 20 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.defaults.TopK != 5 || cfg.defaults.Alpha != 0.5 {
		t.Errorf("defaults = %+v", cfg.defaults)
	}

	WithCache("localhost:6379", "secret", 0)(cfg)
	if cfg.cacheAddrs[0] != "localhost:6379" || cfg.cachePassword != "secret" {
		t.Errorf("cache = %v / %q", cfg.cacheAddrs, cfg.cachePassword)
	}
	if cfg.cacheTTL != defaultCacheTTL {
		t.Errorf("cacheTTL = %v, want default", cfg.cacheTTL)
	}
	WithCache("localhost:6379", "", time.Minute)(cfg)
	if cfg.cacheTTL != time.Minute {
		t.Errorf("cacheTTL = %v, want 1m", cfg.cacheTTL)
	}

	WithLogger(nil)(cfg)
	if cfg.logger == nil {
		t.Error("WithLogger(nil) cleared the logger")
	}
}

func TestClient_NoCache(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping without cache = %v", err)
	}
}
