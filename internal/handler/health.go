package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// readyTimeout bounds all readiness checks together.
const readyTimeout = 5 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Check is a named readiness dependency.
type Check struct {
	Name    string
	Checker HealthChecker
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	checks []Check
}

// NewHealthHandler creates a new HealthHandler.
// A check with a nil Checker is reported as "not configured".
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 if the server is running, without touching dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint.
// It returns 200 only if every configured dependency answers.
// The customer service is not a dependency here: vehicle reads that
// need it fail on their own with 503.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	var mu sync.Mutex
	checks := make(map[string]string, len(h.checks))
	healthy := true

	// Checks run concurrently and never fail the group.
	var g errgroup.Group
	for _, c := range h.checks {
		c := c
		g.Go(func() error {
			result, ok := "not configured", true
			if c.Checker != nil {
				result = "ok"
				if err := c.Checker.Ping(ctx); err != nil {
					result, ok = "error: "+err.Error(), false
				}
			}

			mu.Lock()
			defer mu.Unlock()
			checks[c.Name] = result
			healthy = healthy && ok
			return nil
		})
	}
	_ = g.Wait()

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status: status,
		Checks: checks,
	})
}
