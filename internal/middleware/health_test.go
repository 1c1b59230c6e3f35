package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := PingChecker{Pinger: pingFunc(func(context.Context) error { return nil })}
	down := PingChecker{Pinger: pingFunc(func(context.Context) error { return errors.New("connection refused") })}

	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"sqlite": ok})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"sqlite": ok, "minio": down})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, statusUnhealthy, body.Status)
	assert.Equal(t, statusHealthy, body.Checks["sqlite"].Status)
	assert.Equal(t, "connection refused", body.Checks["minio"].Message)
}

func TestRunChecks_Empty(t *testing.T) {
	h := RunChecks(context.Background(), nil)
	assert.Equal(t, statusHealthy, h.Status)
	assert.Empty(t, h.Checks)
}
