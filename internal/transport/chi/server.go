package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recipedex/internal/corpus"
	"github.com/kailas-cloud/recipedex/internal/domain"
	domrecipe "github.com/kailas-cloud/recipedex/internal/domain/recipe"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/recipedex/internal/usecase/health"
	recipeuc "github.com/kailas-cloud/recipedex/internal/usecase/recipe"
	searchuc "github.com/kailas-cloud/recipedex/internal/usecase/search"
	"github.com/kailas-cloud/recipedex/internal/version"
)

// maxBodyBytes caps POST /api/search bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the recipe search HTTP API.
type Server struct {
	search        *searchuc.Service
	recipes       *recipeuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	recipes *recipeuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		recipes: recipes,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, CodeQueryEmpty),
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeRecipeNotFound),
		sentinelHandler(domain.ErrCorpusNotLoaded, http.StatusServiceUnavailable, CodeServiceUnavailable),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout),
		sentinelHandler(context.Canceled, http.StatusServiceUnavailable, CodeTimeout),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.SearchGet)
		r.Post("/search", s.SearchPost)
		r.Get("/recipes/{id}", s.GetRecipe)
		r.Get("/corpus", s.GetCorpus)
	})
}

// SearchGet handles GET /api/search?q=&ingredients=a,b&exclude=c&alpha=&beta=&top_k=.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid query parameter: "+err.Error())
		return
	}
	s.runSearch(w, r, searchParamsToDomain(params))
}

// SearchPost handles POST /api/search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, request.Params{
		Text:    req.Text,
		Include: req.IncludeIngredients,
		Exclude: req.ExcludeIngredients,
		TopK:    req.TopK,
		Alpha:   req.Alpha,
		Beta:    req.Beta,
	})
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, p request.Params) {
	results, err := s.search.Search(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToAPI(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: items, Count: len(items)})
}

// GetRecipe handles GET /api/recipes/{id}.
func (s *Server) GetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.recipes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeToAPI(&rec))
}

// GetCorpus handles GET /api/corpus.
func (s *Server) GetCorpus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, corpusStatsToAPI(s.recipes.Stats(r.Context())))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Recipes: report.Recipes,
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindSearchParams reads GET /api/search parameters. List parameters are
// comma separated (form style, explode=false).
func bindSearchParams(r *http.Request) (SearchParams, error) {
	var p SearchParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "q", q, &p.Q); err != nil {
		return p, err //nolint:wrapcheck // runtime errors already name the parameter
	}
	if err := runtime.BindQueryParameter("form", false, false, "ingredients", q, &p.Ingredients); err != nil {
		return p, err //nolint:wrapcheck // runtime errors already name the parameter
	}
	if err := runtime.BindQueryParameter("form", false, false, "exclude", q, &p.Exclude); err != nil {
		return p, err //nolint:wrapcheck // runtime errors already name the parameter
	}
	if err := runtime.BindQueryParameter("form", true, false, "top_k", q, &p.TopK); err != nil {
		return p, err //nolint:wrapcheck // runtime errors already name the parameter
	}
	if err := runtime.BindQueryParameter("form", true, false, "alpha", q, &p.Alpha); err != nil {
		return p, err //nolint:wrapcheck // runtime errors already name the parameter
	}
	if err := runtime.BindQueryParameter("form", true, false, "beta", q, &p.Beta); err != nil {
		return p, err //nolint:wrapcheck // runtime errors already name the parameter
	}
	return p, nil
}

func searchParamsToDomain(p SearchParams) request.Params {
	out := request.Params{TopK: p.TopK, Alpha: p.Alpha, Beta: p.Beta}
	if p.Q != nil {
		out.Text = *p.Q
	}
	if p.Ingredients != nil {
		out.Include = *p.Ingredients
	}
	if p.Exclude != nil {
		out.Exclude = *p.Exclude
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrInvalidQuery,
		domain.ErrNotFound,
		domain.ErrCorpusNotLoaded,
		context.DeadlineExceeded,
		context.Canceled,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler reports ErrInvalidQuery with its detail, dropping wrap prefixes.
func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	full := err.Error()
	if i := strings.Index(full, domain.ErrInvalidQuery.Error()); i >= 0 {
		msg = full[i:]
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func searchResultToAPI(r *result.Result) SearchResultItem {
	rec := r.Recipe()
	return SearchResultItem{
		ID:                rec.ID(),
		Title:             rec.Title(),
		Source:            rec.Source(),
		Ingredients:       rec.Ingredients(),
		Instructions:      rec.Instructions(),
		Score:             r.DisplayScore(),
		LexicalScore:      result.Round3(r.Lexical()),
		LexicalNormalized: result.Round3(r.LexicalNormalized()),
		IngredientScore:   result.Round3(r.Ingredient()),
	}
}

func recipeToAPI(r *domrecipe.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:           r.ID(),
		Title:        r.Title(),
		Source:       r.Source(),
		Ingredients:  r.Ingredients(),
		Instructions: r.Instructions(),
	}
}

func corpusStatsToAPI(s corpus.Stats) CorpusResponse {
	return CorpusResponse{
		Recipes:             s.Recipes,
		Vocabulary:          s.Vocabulary,
		AvgDocLength:        s.AvgDocLength,
		EmptyDocuments:      s.EmptyDocuments,
		Sources:             s.Sources,
		Analyzer:            string(s.Analyzer),
		IncludeInstructions: s.IncludeInstructions,
		K1:                  s.Params.K1,
		B:                   s.Params.B,
		Fingerprint:         s.Fingerprint,
	}
}
