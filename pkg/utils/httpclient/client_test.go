package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestDoJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"q":1}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, 0)
	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(`{"q":1}`))
	require.NoError(t, err)

	var out struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, client.DoJSON(req, &out))
	assert.Equal(t, "ok", out.Answer)
}

func TestDoJSON_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, 0)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	err := client.DoJSON(req, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, 7*time.Second, se.RetryAfter)
	assert.Contains(t, se.Body, "slow down")
}

func TestDoRequest_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, 0)
	req, _ := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("x"))

	_, err := client.DoRequest(req)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoRequest_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body), "body must be replayed")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, 1)
	req, _ := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("payload"))

	resp, err := client.DoRequest(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInjectTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil).WithContext(ctx)
	NewClient(time.Second, 0).injectTraceContext(req)
	assert.NotEmpty(t, req.Header.Get("traceparent"))

	plain := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	NewClient(time.Second, 0).injectTraceContext(plain)
	assert.Empty(t, plain.Header.Get("traceparent"))
}
