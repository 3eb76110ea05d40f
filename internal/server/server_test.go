package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/health"
)

func testConfig() config.ServerConfig {
	cfg := config.DefaultConfig().Server
	cfg.Address = "127.0.0.1:0"
	cfg.ShutdownTimeout = config.Duration(5 * time.Second)
	return cfg
}

func siteHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "site "+r.Method+" "+r.URL.Path)
	})
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopping", StateStopping.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestNew_RequiresHandler(t *testing.T) {
	t.Parallel()

	_, err := New(testConfig(), nil)
	assert.Error(t, err)
}

func TestEngine_Routing(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "metrics")
	})
	s, err := New(testConfig(), siteHandler(),
		WithHealth(health.NewHandler(nil)),
		WithMetricsHandler("/metrics", metrics),
	)
	require.NoError(t, err)

	tests := []struct {
		method   string
		path     string
		wantCode int
		wantBody string
	}{
		{method: http.MethodGet, path: "/node/1", wantCode: http.StatusOK, wantBody: "site GET /node/1"},
		{method: http.MethodPatch, path: "/node/1/", wantCode: http.StatusOK, wantBody: "site PATCH /node/1/"},
		{method: http.MethodPost, path: "/healthz", wantCode: http.StatusOK, wantBody: "site POST /healthz"},
		{method: http.MethodGet, path: "/metrics", wantCode: http.StatusOK, wantBody: "metrics"},
		{method: http.MethodGet, path: "/healthz", wantCode: http.StatusOK},
		{method: http.MethodGet, path: "/readyz", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.Engine().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

		assert.Equal(t, tt.wantCode, rec.Code, tt.method+" "+tt.path)
		if tt.wantBody != "" {
			assert.Equal(t, tt.wantBody, rec.Body.String())
		}
	}
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	h := health.NewHandler(nil)
	s, err := New(testConfig(), siteHandler(), WithHealth(h))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(ctx))

	resp, err := http.Get("http://" + s.Addr() + "/node/7")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "site GET /node/7", string(body))

	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, time.Duration(0), s.Uptime())
	assert.Equal(t, health.StatusDraining, h.Readiness(ctx).Status)
	assert.Error(t, s.Stop(ctx))
}

func TestServer_StartListenError(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Address = "256.0.0.1:1"
	s, err := New(cfg, siteHandler())
	require.NoError(t, err)

	assert.Error(t, s.Start(context.Background()))
	assert.Equal(t, StateStopped, s.State())
}

func TestEngine_HandlerStatus(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "implicit")
	})
	s, err := New(testConfig(), handler)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/implicit", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "implicit", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
