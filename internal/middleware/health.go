package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthChecker is one dependency probed by /health.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// PingChecker adapts anything with a Ping method (repositories, archive store).
type PingChecker struct {
	Pinger interface {
		Ping(ctx context.Context) error
	}
}

func (p PingChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Pinger.Ping(ctx)
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// RunChecks probes every checker concurrently. A failing checker never
// cancels the others.
func RunChecks(ctx context.Context, checkers map[string]HealthChecker) HealthStatus {
	health := HealthStatus{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckStatus, len(checkers)),
	}

	var mu sync.Mutex
	var g errgroup.Group
	for name, checker := range checkers {
		g.Go(func() error {
			start := time.Now()
			err := checker.Check(ctx)
			cs := CheckStatus{Status: statusHealthy, LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				cs.Status = statusUnhealthy
				cs.Message = err.Error()
			}

			mu.Lock()
			health.Checks[name] = cs
			if err != nil {
				health.Status = statusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return health
}

// HealthHandler reports every dependency; 503 when any of them fails.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := RunChecks(ctx, checkers)
		code := http.StatusOK
		if health.Status != statusHealthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(health)
	}
}

// ReadinessHandler only checks that the process is serving.
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
}

// LivenessHandler writes "ok".
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}
