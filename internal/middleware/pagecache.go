package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/cache"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

// Page cache results, as reported in the X-Cache header and metrics.
const (
	CacheHit    = "HIT"
	CacheMiss   = "MISS"
	CacheBypass = "BYPASS"

	// CachePurge is reported in metrics when a write clears the cache.
	CachePurge = "PURGE"
)

// formatQuery is the query parameter that selects the request format.
const formatQuery = "_format"

// defaultPageFormat is the format of requests without a _format value.
const defaultPageFormat = "html"

// cachedPage is the stored form of a response.
type cachedPage struct {
	StatusCode int         `json:"statusCode"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
}

// PageCache returns a middleware that caches successful anonymous GET
// responses. The key is the absolute URL including the query string,
// the requested format and the Content-Type, so one path answered in
// several formats never shares an entry. HEAD requests are answered
// from a cached GET.
//
// A successful (2xx) request with any other method than GET, HEAD,
// OPTIONS or TRACE clears the whole cache: a changed entity is served
// under several URLs (its canonical path in each format and its JSON:API
// resource path), and none of them may outlive the write.
func PageCache(
	c cache.Cache,
	ttl time.Duration,
	logger observability.Logger,
	metrics *observability.Metrics,
) func(http.Handler) http.Handler {
	record := func(result string) {
		if metrics != nil {
			metrics.RecordCacheResult(strings.ToLower(result))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cacheable(r) {
				w.Header().Set(HeaderXCache, CacheBypass)
				record(CacheBypass)
				if safeMethod(r.Method) {
					next.ServeHTTP(w, r)
					return
				}

				rw := util.NewResponseRecorder(w)
				next.ServeHTTP(rw, r)
				if rw.Status >= http.StatusOK && rw.Status < http.StatusMultipleChoices {
					purgePages(r.Context(), c, r, logger)
					record(CachePurge)
				}
				return
			}

			ctx := r.Context()
			key := PageCacheKey(r)

			if page, ok := loadPage(ctx, c, key, logger); ok {
				record(CacheHit)
				writePage(w, r, page)
				return
			}

			record(CacheMiss)
			w.Header().Set(HeaderXCache, CacheMiss)

			if r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			rec := &pageRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK || rec.Header().Get(HeaderSetCookie) != "" {
				return
			}
			storePage(ctx, c, key, ttl, rec, logger)
		})
	}
}

// PageCacheKey returns the cache key of a request.
func PageCacheKey(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	format := defaultPageFormat
	if values, ok := r.URL.Query()[formatQuery]; ok && len(values) > 0 {
		format = values[0]
	}
	if ct := r.Header.Get(HeaderContentType); ct != "" {
		format += ";" + strings.ToLower(ct)
	}

	return cache.PageKey(scheme, r.Host, r.URL.RequestURI(), format)
}

func cacheable(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	if r.Header.Get(HeaderCookie) != "" || r.Header.Get(HeaderAuthorization) != "" {
		return false
	}
	return !strings.Contains(strings.ToLower(r.Header.Get(HeaderCacheControl)), "no-cache")
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// purgePages clears the cache after a write. The request context may be
// cancelled once the response is out, so the purge does not inherit it.
func purgePages(ctx context.Context, c cache.Cache, r *http.Request, logger observability.Logger) {
	if err := c.Clear(context.WithoutCancel(ctx)); err != nil {
		logger.WithContext(ctx).Warn("page cache purge failed",
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
			observability.Error(err))
		return
	}
	logger.WithContext(ctx).Debug("page cache purged",
		observability.String("method", r.Method),
		observability.String("path", r.URL.Path))
}

func loadPage(ctx context.Context, c cache.Cache, key string, logger observability.Logger) (*cachedPage, bool) {
	data, err := c.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.WithContext(ctx).Warn("page cache lookup failed", observability.Error(err))
		}
		return nil, false
	}

	var page cachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		logger.WithContext(ctx).Warn("discarding corrupt page cache entry", observability.Error(err))
		_ = c.Delete(ctx, key)
		return nil, false
	}
	return &page, true
}

func storePage(
	ctx context.Context,
	c cache.Cache,
	key string,
	ttl time.Duration,
	rec *pageRecorder,
	logger observability.Logger,
) {
	data, err := json.Marshal(cachedPage{
		StatusCode: rec.status,
		Headers:    rec.header,
		Body:       rec.body.Bytes(),
	})
	if err != nil {
		return
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		logger.WithContext(ctx).Warn("page cache store failed", observability.Error(err))
	}
}

func writePage(w http.ResponseWriter, r *http.Request, page *cachedPage) {
	for key, values := range page.Headers {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set(HeaderXCache, CacheHit)
	w.WriteHeader(page.StatusCode)
	if r.Method != http.MethodHead {
		_, _ = w.Write(page.Body)
	}
}

// pageRecorder passes a response through while keeping a copy of it.
type pageRecorder struct {
	http.ResponseWriter
	status      int
	header      http.Header
	body        bytes.Buffer
	wroteHeader bool
}

func (rec *pageRecorder) WriteHeader(code int) {
	if rec.wroteHeader {
		return
	}
	rec.wroteHeader = true
	rec.status = code

	rec.header = rec.Header().Clone()
	rec.header.Del(HeaderXCache)
	rec.header.Del(HeaderXRequestID)

	rec.ResponseWriter.WriteHeader(code)
}

func (rec *pageRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}
