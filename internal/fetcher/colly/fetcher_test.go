package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/rovers", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>roster</body></html>"))
	})
	mux.HandleFunc("/players/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/players/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/players/new", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>profile</body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetch_Success(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	f := New(Config{UserAgent: "roster-crawler-test/1.0", Timeout: 5 * time.Second})

	resp, err := f.Fetch(context.Background(), server.URL+"/teams/rovers")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, server.URL+"/teams/rovers", resp.URL)
	require.Contains(t, string(resp.Body), "roster")
	require.Greater(t, resp.Duration, time.Duration(0))
}

func TestFetch_ReportsFinalURLAfterRedirect(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	f := New(Config{Timeout: 5 * time.Second})

	resp, err := f.Fetch(context.Background(), server.URL+"/players/old")
	require.NoError(t, err)
	require.Equal(t, server.URL+"/players/new", resp.URL)
	require.Contains(t, string(resp.Body), "profile")
}

func TestFetch_NonSuccessStatusIsError(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	f := New(Config{Timeout: 5 * time.Second})

	_, err := f.Fetch(context.Background(), server.URL+"/missing")
	require.Error(t, err)
}

func TestFetch_SameURLTwice(t *testing.T) {
	t.Parallel()

	// Retried items re-fetch the same URL through the same Fetcher.
	server := newTestServer(t)
	f := New(Config{Timeout: 5 * time.Second})

	for range 2 {
		resp, err := f.Fetch(context.Background(), server.URL+"/teams/rovers")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}
