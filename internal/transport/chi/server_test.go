package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/corpus"
	domrecipe "github.com/kailas-cloud/recipedex/internal/domain/recipe"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/ranking"
	healthuc "github.com/kailas-cloud/recipedex/internal/usecase/health"
	recipeuc "github.com/kailas-cloud/recipedex/internal/usecase/recipe"
	searchuc "github.com/kailas-cloud/recipedex/internal/usecase/search"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	n, err := analysis.New(analysis.ModeLemma)
	if err != nil {
		t.Fatalf("analysis.New: %v", err)
	}
	fixtures := []struct {
		id, title string
		lines     []string
	}{
		{"A", "Avocado Toast", []string{"1 ripe avocado, peeled", "2 slices bread"}},
		{"B", "Egg Fried Rice", []string{"1 cup rice", "2 eggs"}},
		{"C", "Rice Pudding", []string{"1 cup rice", "2 cups milk", "sugar"}},
	}
	recipes := make([]domrecipe.Recipe, 0, len(fixtures))
	for i, f := range fixtures {
		r, err := domrecipe.New(f.id, i, f.title, "test", f.lines, []string{"Cook."})
		if err != nil {
			t.Fatalf("recipe.New: %v", err)
		}
		recipes = append(recipes, r)
	}
	c, err := corpus.Build(recipes, n, corpus.DefaultOptions())
	if err != nil {
		t.Fatalf("corpus.Build: %v", err)
	}
	engine, err := ranking.New(c, n, ranking.DefaultOptions(), zap.NewNop())
	if err != nil {
		t.Fatalf("ranking.New: %v", err)
	}

	srv := NewServer(
		searchuc.New(engine, nil, request.StandardDefaults()),
		recipeuc.New(c),
		healthuc.New(c, nil),
		zap.NewNop(),
	)
	return NewRouter(srv, nil, zap.NewNop())
}

func doRequest(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeSearch(t *testing.T, rr *httptest.ResponseRecorder) SearchResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantCode ErrorCode) ErrorResponse {
	t.Helper()
	if rr.Code != wantStatus {
		t.Fatalf("status = %d, want %d, body = %s", rr.Code, wantStatus, rr.Body.String())
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != wantCode {
		t.Errorf("code = %q, want %q", resp.Code, wantCode)
	}
	return resp
}

func resultIDs(resp SearchResponse) []string {
	out := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = r.ID
	}
	return out
}

func TestSearchGet_Ingredients(t *testing.T) {
	h := newTestRouter(t)
	resp := decodeSearch(t, doRequest(t, h, http.MethodGet, "/api/search?ingredients=avocado", nil))

	if resp.Count != 1 || resp.Results[0].ID != "A" {
		t.Fatalf("results = %v", resultIDs(resp))
	}
	top := resp.Results[0]
	if top.IngredientScore != 1 || top.Score != 0.3 {
		t.Errorf("scores = ingredient %v, combined %v", top.IngredientScore, top.Score)
	}
	if len(top.Ingredients) != 2 || top.Ingredients[0] != "1 ripe avocado, peeled" {
		t.Errorf("ingredients = %v", top.Ingredients)
	}
}

func TestSearchGet_TextTopK(t *testing.T) {
	h := newTestRouter(t)
	resp := decodeSearch(t, doRequest(t, h, http.MethodGet, "/api/search?q=fried+rice&top_k=1", nil))
	if got := resultIDs(resp); len(got) != 1 || got[0] != "B" {
		t.Errorf("results = %v, want [B]", got)
	}
}

func TestSearchGet_CommaLists(t *testing.T) {
	h := newTestRouter(t)
	resp := decodeSearch(t, doRequest(t, h, http.MethodGet, "/api/search?ingredients=rice,milk&exclude=egg", nil))
	if got := resultIDs(resp); len(got) != 1 || got[0] != "C" {
		t.Errorf("results = %v, want [C]", got)
	}
	if resp.Results[0].IngredientScore != 1 {
		t.Errorf("ingredient score = %v", resp.Results[0].IngredientScore)
	}
}

func TestSearchGet_Errors(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		status int
		code   ErrorCode
	}{
		{"empty query", "/api/search", http.StatusBadRequest, CodeQueryEmpty},
		{"only exclude", "/api/search?exclude=nuts", http.StatusBadRequest, CodeQueryEmpty},
		{"negative alpha", "/api/search?q=rice&alpha=-1", http.StatusBadRequest, CodeValidationFailed},
		{"zero top_k", "/api/search?q=rice&top_k=0", http.StatusBadRequest, CodeValidationFailed},
		{"non-numeric top_k", "/api/search?q=rice&top_k=abc", http.StatusBadRequest, CodeBadRequest},
		{"non-numeric beta", "/api/search?q=rice&beta=x", http.StatusBadRequest, CodeBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := decodeError(t, doRequest(t, h, http.MethodGet, tc.target, nil), tc.status, tc.code)
			if tc.code == CodeValidationFailed && !strings.HasPrefix(resp.Message, "invalid query") {
				t.Errorf("message = %q", resp.Message)
			}
		})
	}
}

func TestSearchPost(t *testing.T) {
	h := newTestRouter(t)
	body, _ := json.Marshal(SearchRequest{
		Text:               "rice",
		IncludeIngredients: []string{"rice"},
		ExcludeIngredients: []string{"egg"},
	})
	resp := decodeSearch(t, doRequest(t, h, http.MethodPost, "/api/search", body))
	if got := resultIDs(resp); len(got) != 1 || got[0] != "C" {
		t.Errorf("results = %v, want [C]", got)
	}
	if resp.Results[0].Score != 1 {
		t.Errorf("score = %v, want 1", resp.Results[0].Score)
	}
}

func TestSearchPost_BadBody(t *testing.T) {
	h := newTestRouter(t)
	decodeError(t, doRequest(t, h, http.MethodPost, "/api/search", []byte("{")), http.StatusBadRequest, CodeBadRequest)
}

func TestGetRecipe(t *testing.T) {
	h := newTestRouter(t)

	rr := doRequest(t, h, http.MethodGet, "/api/recipes/B", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var rec RecipeResponse
	if err := json.NewDecoder(rr.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Title != "Egg Fried Rice" || len(rec.Instructions) != 1 {
		t.Errorf("recipe = %+v", rec)
	}

	decodeError(t, doRequest(t, h, http.MethodGet, "/api/recipes/nope", nil), http.StatusNotFound, CodeRecipeNotFound)
}

func TestGetCorpus(t *testing.T) {
	h := newTestRouter(t)
	rr := doRequest(t, h, http.MethodGet, "/api/corpus", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp CorpusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Recipes != 3 || resp.Analyzer != "lemma" || resp.Sources["test"] != 3 {
		t.Errorf("corpus = %+v", resp)
	}
	if resp.K1 != 1.5 || resp.B != 0.75 {
		t.Errorf("params = %v/%v", resp.K1, resp.B)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestRouter(t)
	rr := doRequest(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Recipes != 3 || resp.Checks["corpus"] != "ok" {
		t.Errorf("health = %+v", resp)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestNotFoundRoute(t *testing.T) {
	h := newTestRouter(t)
	decodeError(t, doRequest(t, h, http.MethodGet, "/api/nope", nil), http.StatusNotFound, CodeBadRequest)
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	decodeError(t, doRequest(t, h, http.MethodGet, "/", nil), http.StatusInternalServerError, CodeInternalError)
}
