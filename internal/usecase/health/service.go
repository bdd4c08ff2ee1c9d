package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the cache is down; search still works.
	Degraded Status = "degraded"
	// Unhealthy indicates no corpus is loaded.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckEmpty indicates a loaded corpus with no recipes.
	CheckEmpty CheckResult = "empty"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Recipes int
	Checks  map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	corpus CorpusReader
	cache  CachePinger
}

// New creates a Service. cache can be nil when caching is disabled.
func New(corpus CorpusReader, cache CachePinger) *Service {
	return &Service{corpus: corpus, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	recipes := 0
	switch {
	case s.corpus == nil:
		checks["corpus"] = CheckError
		status = Unhealthy
	case s.corpus.Len() == 0:
		checks["corpus"] = CheckEmpty
	default:
		recipes = s.corpus.Len()
		checks["corpus"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["cache"] = CheckOK
		}
	}

	return Report{Status: status, Recipes: recipes, Checks: checks}
}
