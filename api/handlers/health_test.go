package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/rfpflow/api"
)

func TestHealthHandler_Health(t *testing.T) {
	h := NewHealthHandler("1.2.3", zaptest.NewLogger(t))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)

	rec := getPath(mux, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health api.HealthResponse
	decodeData(t, decodeResponse(t, rec), &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
}

func TestHealthHandler_ReadyAllHealthy(t *testing.T) {
	h := NewHealthHandler("dev", zaptest.NewLogger(t))
	h.AddCheck("database", func(ctx context.Context) error { return nil })
	h.AddCheck("redis", func(ctx context.Context) error { return nil })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ready", h.Ready)

	rec := getPath(mux, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	var health api.HealthResponse
	decodeData(t, decodeResponse(t, rec), &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Components["database"])
	assert.Equal(t, "ok", health.Components["redis"])
}

func TestHealthHandler_ReadyDegraded(t *testing.T) {
	h := NewHealthHandler("dev", zaptest.NewLogger(t))
	h.AddCheck("database", func(ctx context.Context) error { return nil })
	h.AddCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ready", h.Ready)

	rec := getPath(mux, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health api.HealthResponse
	decodeData(t, decodeResponse(t, rec), &health)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "ok", health.Components["database"])
	assert.Equal(t, "unavailable", health.Components["redis"])
}

func TestHealthHandler_ReadyNoChecks(t *testing.T) {
	h := NewHealthHandler("dev", zaptest.NewLogger(t))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ready", h.Ready)

	rec := getPath(mux, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}
