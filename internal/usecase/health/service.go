package health

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the store answers but something else is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the vector store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates the question index has not been created yet.
	CheckMissing CheckResult = "missing"
)

// Report aggregates health check results.
type Report struct {
	Status        Status
	Checks        map[string]CheckResult
	ClusterStatus string
	NodeCount     int
}

// Service coordinates health checks.
type Service struct {
	store     StoreChecker
	embedding EmbeddingChecker
	index     IndexChecker
}

// New creates a Service. embedding and index can be nil.
func New(store StoreChecker, embedding EmbeddingChecker, index IndexChecker) *Service {
	return &Service{store: store, embedding: embedding, index: index}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	h, err := s.store.CheckHealth(ctx)
	if err != nil || h == nil || h.ClusterStatus == db.ClusterRed {
		r.Checks["database"] = CheckError
		r.Status = Unhealthy
	} else {
		r.Checks["database"] = CheckOK
		r.ClusterStatus = h.ClusterStatus
		r.NodeCount = h.NodeCount
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			r.Checks["embedding"] = CheckError
			r.degrade()
		} else {
			r.Checks["embedding"] = CheckOK
		}
	}

	if s.index != nil && r.Status != Unhealthy {
		ok, err := s.index.Exists(ctx)
		switch {
		case err != nil:
			r.Checks["index"] = CheckError
			r.degrade()
		case !ok:
			r.Checks["index"] = CheckMissing
			r.degrade()
		default:
			r.Checks["index"] = CheckOK
		}
	}

	return r
}

func (r *Report) degrade() {
	if r.Status == Healthy {
		r.Status = Degraded
	}
}
