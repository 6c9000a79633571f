package onboarding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOptions() *Options {
	opts := NewOptions()
	opts.Server.Addr = "127.0.0.1:0"
	opts.Server.Mode = gin.TestMode
	opts.Server.ShutdownTimeout = 2 * time.Second
	opts.Database.SQLitePath = ":memory:"
	opts.Database.LogLevel = 1
	opts.Ingest.Workers = 2
	return opts
}

func TestNewServer(t *testing.T) {
	srv, err := NewServer(context.Background(), newTestOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close(context.Background()) })

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":{"status":"UP"}`)
	assert.Contains(t, w.Body.String(), `"vector":{"status":"UP"}`)

	w = httptest.NewRecorder()
	body := `{"filename":"handbook.txt","text":"Badges are issued at reception on your first day."}`
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ingest_pool"`)
}

func TestNewServerFailsOnBadDatabase(t *testing.T) {
	opts := newTestOptions()
	opts.Database.SQLitePath = t.TempDir() + "/missing/dir/onboarding.db"

	_, err := NewServer(context.Background(), opts)
	assert.Error(t, err)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	srv, err := NewServer(context.Background(), newTestOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, srv.health.IsReady, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.http.Addr() + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, srv.health.IsReady())
}
