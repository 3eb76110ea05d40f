package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/jsonapi"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/middleware"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/pathsupport"
)

const (
	articleUUID = "6f1c2c1e-3d55-4d0e-9a55-2f0b5a7d7c01"
	userUUID    = "0b8e9f9a-0c43-4a4e-8d0e-8f1f3f0e2a11"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{Address: "127.0.0.1:0"},
		Storage: config.StorageConfig{DSN: filepath.Join(t.TempDir(), "app.db")},
		Metrics: config.MetricsConfig{Enabled: true},
		EntityTypes: []config.EntityTypeConfig{
			{
				ID:            "node",
				Label:         "Content",
				Bundles:       []string{"article", "page"},
				LinkTemplates: map[string]string{config.LinkCanonical: "/node/{node}"},
			},
			{
				ID:            "user",
				Bundles:       []string{"user"},
				LinkTemplates: map[string]string{config.LinkCanonical: "/user/{user}"},
			},
		},
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: true},
		Fixtures: []config.FixtureConfig{
			{EntityType: "node", Bundle: "article", UUID: articleUUID, Label: "Hello", Fields: map[string]any{"body": "text"}},
			{EntityType: "user", Bundle: "user", UUID: userUUID, Label: "admin"},
		},
	}
	cfg.ApplyDefaults()
	require.NoError(t, config.ValidateConfig(cfg))
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()

	a, err := New(context.Background(), cfg, WithVersion("test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func serve(h http.Handler, method, target, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) jsonapi.Document {
	t.Helper()

	var doc jsonapi.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc), rec.Body.String())
	return doc
}

func TestApplication_ServesCanonicalPaths(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, testConfig(t))
	h := a.Handler()

	page := serve(h, http.MethodGet, "/node/1", "")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, page.Body.String(), "Hello")
	assert.NotEmpty(t, page.Header().Get(middleware.RequestIDHeader))

	tests := []struct {
		path     string
		wantType string
		wantID   string
	}{
		{path: "/node/1?_format=api_json", wantType: "node--article", wantID: articleUUID},
		{path: "/user/2?_format=api_json", wantType: "user--user", wantID: userUUID},
	}
	for _, tt := range tests {
		rec := serve(h, http.MethodGet, tt.path, pathsupport.MediaType)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, jsonapi.MediaType, rec.Header().Get("Content-Type"))

		doc := decode(t, rec)
		assert.Equal(t, tt.wantType, doc.Data.Type)
		assert.Equal(t, tt.wantID, doc.Data.ID)
	}

	direct := serve(h, http.MethodGet, "/jsonapi/node--article/"+articleUUID, "")
	forwarded := serve(h, http.MethodGet, "/node/1?_format=api_json", pathsupport.MediaType)
	assert.JSONEq(t, direct.Body.String(), forwarded.Body.String())

	missing := serve(h, http.MethodGet, "/node/99?_format=api_json", pathsupport.MediaType)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, jsonapi.MediaType, missing.Header().Get("Content-Type"))
}

func TestApplication_ServerEndpoints(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, testConfig(t))
	engine := a.Server().Engine()

	serve(engine, http.MethodGet, "/node/1?_format=api_json", pathsupport.MediaType)

	ready := serve(engine, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, ready.Code, ready.Body.String())

	metrics := serve(engine, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code)
	body := metrics.Body.String()
	assert.Contains(t, body, `pathsupport_forwards_total{resource_type="node--article",status="200"} 1`)
	assert.Contains(t, body, `route="pathsupport.node"`)
	assert.Contains(t, body, "pathsupport_route_table_routes")
}

func TestApplication_Reload(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	h := a.Handler()
	ctx := context.Background()

	renamed := *cfg
	renamed.JSONAPI.ResourceTypes = []config.ResourceTypeConfig{
		{EntityType: "node", Bundle: "article", Name: "articles"},
	}
	require.NoError(t, a.Reload(ctx, &renamed))

	doc := decode(t, serve(h, http.MethodGet, "/node/1?_format=api_json", pathsupport.MediaType))
	assert.Equal(t, "articles", doc.Data.Type)
	assert.True(t, strings.HasSuffix(doc.Data.Links["self"].Href, "/jsonapi/articles/"+articleUUID))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/jsonapi/articles/"+articleUUID, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/jsonapi/node--article/"+articleUUID, "").Code)

	invalid := renamed
	invalid.JSONAPI.ResourceTypes = []config.ResourceTypeConfig{
		{EntityType: "node", Bundle: "missing", Name: "ghosts"},
	}
	require.Error(t, a.Reload(ctx, &invalid))

	assert.Equal(t, "articles", a.Site().ResourceTypes.All()[0].TypeName)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/jsonapi/articles/"+articleUUID, "").Code)
}

func TestApplication_ReloadAddsEntityTypes(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	h := a.Handler()

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/term/3", "").Code)

	extended := *cfg
	extended.EntityTypes = append(extended.EntityTypes[:len(extended.EntityTypes):len(extended.EntityTypes)],
		config.EntityTypeConfig{
			ID:            "term",
			Bundles:       []string{"tags"},
			LinkTemplates: map[string]string{config.LinkCanonical: "/term/{term}"},
		})
	extended.Fixtures = append(extended.Fixtures[:len(extended.Fixtures):len(extended.Fixtures)],
		config.FixtureConfig{EntityType: "term", Bundle: "tags", Label: "go"})
	require.NoError(t, a.Reload(context.Background(), &extended))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/term/3", "").Code)

	doc := decode(t, serve(h, http.MethodGet, "/term/3?_format=api_json", pathsupport.MediaType))
	assert.Equal(t, "term--tags", doc.Data.Type)
}

func TestApplication_ReloadRejectsBrokenRoutes(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	h := a.Handler()
	ctx := context.Background()
	before := a.Site()

	const termUUID = "9d5c1f7e-2b8a-4c3d-8e6f-0a1b2c3d4e5f"
	broken := *cfg
	broken.EntityTypes = append(broken.EntityTypes[:len(broken.EntityTypes):len(broken.EntityTypes)],
		config.EntityTypeConfig{
			ID:            "term",
			Bundles:       []string{"tags"},
			LinkTemplates: map[string]string{config.LinkCanonical: "/term/{term}/{term}"},
		})
	broken.Fixtures = append(broken.Fixtures[:len(broken.Fixtures):len(broken.Fixtures)],
		config.FixtureConfig{EntityType: "term", Bundle: "tags", UUID: termUUID, Label: "go"})
	require.NoError(t, config.ValidateConfig(&broken))

	require.Error(t, a.Reload(ctx, &broken))

	assert.Same(t, before, a.Site())
	_, err := a.Storage().LoadByUUID(ctx, "term", termUUID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/node/1", "").Code)
}

func TestApplication_PageCacheAndRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 3}
	h := newTestApp(t, cfg).Handler()

	first := serve(h, http.MethodGet, "/node/1?_format=api_json", pathsupport.MediaType)
	second := serve(h, http.MethodGet, "/node/1?_format=api_json", pathsupport.MediaType)
	html := serve(h, http.MethodGet, "/node/1", "")
	limited := serve(h, http.MethodGet, "/node/1", "")

	assert.Equal(t, middleware.CacheMiss, first.Header().Get(middleware.HeaderXCache))
	assert.Equal(t, middleware.CacheHit, second.Header().Get(middleware.HeaderXCache))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, middleware.CacheMiss, html.Header().Get(middleware.HeaderXCache))
	assert.Contains(t, html.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
}

func TestApplication_WritesPurgePageCache(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	h := newTestApp(t, cfg).Handler()

	canonical := "/node/1?_format=api_json"
	resource := "/jsonapi/node--article/" + articleUUID

	before := serve(h, http.MethodGet, canonical, pathsupport.MediaType)
	require.Equal(t, http.StatusOK, before.Code)
	assert.Equal(t, "Hello", decode(t, before).Data.Attributes["label"])
	assert.Equal(t, middleware.CacheHit,
		serve(h, http.MethodGet, canonical, pathsupport.MediaType).Header().Get(middleware.HeaderXCache))
	serve(h, http.MethodGet, "/node/1", "")

	body := `{"data":{"type":"node--article","id":"` + articleUUID + `","attributes":{"label":"Changed"}}}`
	req := httptest.NewRequest(http.MethodPatch, resource, strings.NewReader(body))
	req.Header.Set("Content-Type", jsonapi.MediaType)
	patched := httptest.NewRecorder()
	h.ServeHTTP(patched, req)
	require.Equal(t, http.StatusOK, patched.Code, patched.Body.String())

	direct := serve(h, http.MethodGet, resource, "")
	forwarded := serve(h, http.MethodGet, canonical, pathsupport.MediaType)
	page := serve(h, http.MethodGet, "/node/1", "")

	assert.Equal(t, middleware.CacheMiss, forwarded.Header().Get(middleware.HeaderXCache))
	assert.Equal(t, "Changed", decode(t, forwarded).Data.Attributes["label"])
	assert.JSONEq(t, direct.Body.String(), forwarded.Body.String())
	assert.Equal(t, middleware.CacheMiss, page.Header().Get(middleware.HeaderXCache))
	assert.Contains(t, page.Body.String(), "Changed")
}

func TestApplication_StartShutdown(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, a.Start(ctx))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+a.Server().Addr()+"/node/1?_format=api_json", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", pathsupport.MediaType)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), articleUUID)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), jsonapi.MediaType))

	require.NoError(t, a.Shutdown(ctx))
	assert.False(t, a.Server().IsRunning())
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Cache = config.CacheConfig{Enabled: true, Type: config.CacheTypeRedis}
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
