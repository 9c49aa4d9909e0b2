package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestDialTarget(t *testing.T) {
	assert.Equal(t, "localhost:9090", dialTarget(":9090"))
	assert.Equal(t, "grpc.internal:9090", dialTarget("grpc.internal:9090"))
	assert.Equal(t, "not-an-address", dialTarget("not-an-address"))
}

func TestCheckStatus(t *testing.T) {
	ok := HealthCheck{Name: "ok", Check: func(context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(context.Background(), []HealthCheck{ok}))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(context.Background(), []HealthCheck{ok, down}))
}

func TestNewServers_Routes(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Address: ":8080", SwaggerDir: t.TempDir()},
		GRPC: config.GRPCConfig{Address: ":9090"},
	}

	s, err := newServers(cfg, api)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.healthConn.Close() })

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/flights", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/docs/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger")
}
