package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avatarctic/diskcache/internal/application/services"
	"github.com/avatarctic/diskcache/internal/core/ports"
	"github.com/avatarctic/diskcache/internal/infrastructure/filestore"
	"github.com/avatarctic/diskcache/internal/infrastructure/httpserver"
	"github.com/avatarctic/diskcache/internal/infrastructure/memindex"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type checkerMock struct {
	name string
	err  error
}

func (c *checkerMock) Name() string                  { return c.name }
func (c *checkerMock) Check(_ context.Context) error { return c.err }

func newTestServer(t *testing.T, checkers ...ports.HealthChecker) (*httpserver.Server, ports.CacheEngine) {
	t.Helper()
	logger := logrus.New()
	engine := services.NewCacheService(memindex.New(10), filestore.New(t.TempDir(), nil), services.SystemClock{}, nil, nil)
	cfg := &httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"}
	return httpserver.NewServer(cfg, logger, engine, checkers), engine
}

func TestStatsEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)
	require.NoError(t, engine.Set(context.Background(), "k", "v", time.Minute))
	_, _ = engine.Get(context.Background(), "k")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 1, body["hits"])
	require.EqualValues(t, 1, body["sets"])
	require.EqualValues(t, 1, body["fileItems"])
}

func TestHealthz_Healthy(t *testing.T) {
	srv, _ := newTestServer(t, &checkerMock{name: "storage"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
}

func TestHealthz_Degraded(t *testing.T) {
	srv, _ := newTestServer(t,
		&checkerMock{name: "storage"},
		&checkerMock{name: "cache", err: errors.New("probe failed")},
	)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "degraded", body["status"])
	deps := body["dependencies"].(map[string]any)
	require.Equal(t, "healthy", deps["storage"])
	require.Equal(t, "unhealthy", deps["cache"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "cache_hits_total")
}
