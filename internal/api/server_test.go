package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sportsgraph/roster-crawler/internal/scheduler"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := NewServer(&scheduler.Stats{}, "run-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStatusReportsRunCounters(t *testing.T) {
	t.Parallel()

	stats := &scheduler.Stats{}
	srv := NewServer(stats, "run-abc", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "run-abc", resp.RunID)
	require.False(t, resp.StartedAt.IsZero())
	require.Zero(t, resp.Crawl.Dispatched)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := NewServer(&scheduler.Stats{}, "run-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}
