package kernel

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// MaxBodyBytes bounds the request body read into memory.
const MaxBodyBytes = 10 << 20

// Attribute keys set by the kernel.
const (
	AttrRoute         = "_route"
	AttrRouteObject   = "_route_object"
	AttrController    = "_controller"
	AttrRawParameters = "_raw_variables"
)

// QueryFormat is the query parameter that selects the request format.
const QueryFormat = "_format"

// RequestType distinguishes the main request from internal sub-requests.
type RequestType int

const (
	MainRequest RequestType = iota
	SubRequest
)

// String returns "main" or "sub".
func (t RequestType) String() string {
	if t == SubRequest {
		return "sub"
	}
	return "main"
}

// Attributes is the per-request attribute bag. Routing stores the
// matched route, the controller and the converted parameters here.
type Attributes map[string]any

// Get returns an attribute.
func (a Attributes) Get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// GetString returns a string attribute, or "" if absent or not a string.
func (a Attributes) GetString(key string) string {
	s, _ := a[key].(string)
	return s
}

// Set sets an attribute.
func (a Attributes) Set(key string, value any) {
	a[key] = value
}

// Request is the kernel's view of an HTTP request.
type Request struct {
	Method     string
	URL        *url.URL
	Host       string
	Header     http.Header
	Body       []byte
	Cookies    []*http.Cookie
	Server     ServerBag
	Attributes Attributes

	format string
}

// ErrBodyTooLarge is returned when the body exceeds MaxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// NewRequest reads an incoming request into a Request.
func NewRequest(r *http.Request) (*Request, error) {
	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		if len(data) > MaxBodyBytes {
			return nil, ErrBodyTooLarge
		}
		body = data
	}

	u := *r.URL
	return &Request{
		Method:     r.Method,
		URL:        &u,
		Host:       r.Host,
		Header:     r.Header.Clone(),
		Body:       body,
		Cookies:    r.Cookies(),
		Server:     NewServerBag(r),
		Attributes: make(Attributes),
	}, nil
}

// NewSubRequest creates a request for uri that carries the cookies and
// server variables of parent. Headers are re-derived from the server
// bag; body and attributes start empty.
func NewSubRequest(parent *Request, method, uri string) (*Request, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid sub-request uri %q: %w", uri, err)
	}

	server := parent.Server.Clone()
	server[ServerRequestMethod] = method
	server[ServerRequestURI] = u.RequestURI()
	server[ServerQueryString] = u.RawQuery

	return &Request{
		Method:     method,
		URL:        u,
		Host:       server.Host(),
		Header:     server.Headers(),
		Cookies:    slices.Clone(parent.Cookies),
		Server:     server,
		Attributes: make(Attributes),
	}, nil
}

// Format returns the negotiated request format.
func (r *Request) Format() string {
	return r.format
}

// SetFormat sets the request format.
func (r *Request) SetFormat(format string) {
	r.format = format
}

// Query parses the query string.
func (r *Request) Query() url.Values {
	q, _ := url.ParseQuery(r.URL.RawQuery)
	return q
}

// HasQuery reports whether the query string has a parameter named key.
func (r *Request) HasQuery(key string) bool {
	for _, pair := range splitQuery(r.URL.RawQuery) {
		if queryKey(pair) == key {
			return true
		}
	}
	return false
}

// RemoveQuery removes every pair named key from the query string. The
// remaining pairs keep their order and encoding.
func (r *Request) RemoveQuery(key string) {
	pairs := slices.DeleteFunc(splitQuery(r.URL.RawQuery), func(pair string) bool {
		return queryKey(pair) == key
	})
	r.SetRawQuery(strings.Join(pairs, "&"))
}

// SetRawQuery replaces the query string and keeps the server bag in sync.
func (r *Request) SetRawQuery(raw string) {
	r.URL.RawQuery = raw
	if r.Server != nil {
		r.Server[ServerQueryString] = raw
		r.Server[ServerRequestURI] = r.URL.RequestURI()
	}
}

// Cookie returns the named cookie.
func (r *Request) Cookie(name string) (*http.Cookie, bool) {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ContentType returns the Content-Type header.
func (r *Request) ContentType() string {
	return r.Header.Get("Content-Type")
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	return slices.DeleteFunc(strings.Split(raw, "&"), func(s string) bool { return s == "" })
}

func queryKey(pair string) string {
	k, _, _ := strings.Cut(pair, "=")
	if unescaped, err := url.QueryUnescape(k); err == nil {
		return unescaped
	}
	return k
}
