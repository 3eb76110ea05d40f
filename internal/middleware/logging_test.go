package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		route     string
		wantLevel string
	}{
		{name: "matched route", status: http.StatusOK, route: "pathsupport.node", wantLevel: "info"},
		{name: "unmatched", status: http.StatusNotFound, wantLevel: "info"},
		{name: "server error", status: http.StatusInternalServerError, route: "entity.node.canonical", wantLevel: "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := observability.NewLogger(observability.LogConfig{Level: "debug", Writer: &buf})
			require.NoError(t, err)

			handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.route != "" {
					util.RouteHolderFromContext(r.Context()).Name = tt.route
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}), RequestIDWithGenerator(func() string { return "req-1" }), Logging(logger))

			req := httptest.NewRequest(http.MethodGet, "/node/1?_format=api_json", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "http request", entry["message"])
			assert.Equal(t, "GET", entry["method"])
			assert.Equal(t, "/node/1", entry["path"])
			assert.Equal(t, "_format=api_json", entry["query"])
			assert.InDelta(t, float64(tt.status), entry["status"], 0)
			assert.InDelta(t, 4, entry["size"], 0)
			assert.Equal(t, "req-1", entry["request_id"])
			if tt.route != "" {
				assert.Equal(t, tt.route, entry["route"])
			} else {
				assert.NotContains(t, entry, "route")
			}
		})
	}
}

func TestLogging_KeepsExistingRouteHolder(t *testing.T) {
	t.Parallel()

	holder := &util.RouteHolder{}
	handler := Logging(observability.NopLogger())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		util.RouteHolderFromContext(r.Context()).Name = "jsonapi.node--article.individual"
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(util.ContextWithRouteHolder(req.Context(), holder))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "jsonapi.node--article.individual", holder.Name)
}
