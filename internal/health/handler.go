// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type namedChecker struct {
	name     string
	checker  Checker
	advisory bool
}

type Handler struct {
	checkers []namedChecker
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(db, redis Checker) *Handler {
	h := &Handler{
		checkers: []namedChecker{
			{name: "database", checker: db},
			{name: "redis", checker: redis},
		},
	}
	h.ready.Store(true)
	return h
}

// AddChecker registers an extra readiness probe whose failure marks the
// instance unready. Must be called before the server starts serving
// requests.
func (h *Handler) AddChecker(name string, checker Checker) {
	h.checkers = append(h.checkers, namedChecker{name: name, checker: checker})
}

// AddAdvisoryChecker registers a probe that shows up in the readiness
// report but never flips the instance to 503. Dependencies the service
// survives in degraded form, like the market feed with its fallback
// quotes, belong here.
func (h *Handler) AddAdvisoryChecker(name string, checker Checker) {
	h.checkers = append(h.checkers, namedChecker{
		name:     name,
		checker:  checker,
		advisory: true,
	})
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "shutting_down",
		})
		return
	}

	h.writeStatus(w, http.StatusOK, StatusResponse{
		Status: "ok",
	})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "shutting_down",
		})
		return
	}

	if !h.ready.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := h.runHealthChecks(ctx)

	// Advisory failures are reported but never pull the instance out of
	// rotation.
	allHealthy := true
	for _, check := range checks {
		if !check.Healthy && !check.Advisory {
			allHealthy = false
			break
		}
	}

	status := "ok"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	h.writeStatus(w, statusCode, ReadinessResponse{
		Status: status,
		Checks: checks,
	})
}

func (h *Handler) runHealthChecks(ctx context.Context) []HealthCheck {
	var wg sync.WaitGroup
	checks := make([]HealthCheck, len(h.checkers))

	for i, nc := range h.checkers {
		wg.Add(1)
		go func(i int, nc namedChecker) {
			defer wg.Done()
			checks[i] = runCheck(ctx, nc)
		}(i, nc)
	}

	wg.Wait()
	return checks
}

func runCheck(ctx context.Context, nc namedChecker) HealthCheck {
	check := HealthCheck{
		Name:     nc.name,
		Healthy:  true,
		Advisory: nc.advisory,
	}

	if nc.checker == nil {
		check.Healthy = false
		check.Message = "checker not configured"
		return check
	}

	start := time.Now()
	err := nc.checker.Ping(ctx)
	check.Latency = time.Since(start).String()

	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}

	return check
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name     string `json:"name"`
	Healthy  bool   `json:"healthy"`
	Advisory bool   `json:"advisory,omitempty"`
	Latency  string `json:"latency,omitempty"`
	Message  string `json:"message,omitempty"`
}
