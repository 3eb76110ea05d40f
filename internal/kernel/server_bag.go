package kernel

import (
	"maps"
	"net"
	"net/http"
	"net/textproto"
	"strings"
)

// Server bag keys.
const (
	ServerRemoteAddr     = "REMOTE_ADDR"
	ServerRemotePort     = "REMOTE_PORT"
	ServerName           = "SERVER_NAME"
	ServerPort           = "SERVER_PORT"
	ServerHTTPS          = "HTTPS"
	ServerProtocol       = "SERVER_PROTOCOL"
	ServerRequestMethod  = "REQUEST_METHOD"
	ServerRequestURI     = "REQUEST_URI"
	ServerQueryString    = "QUERY_STRING"
	ServerContentType    = "CONTENT_TYPE"
	ServerContentLength  = "CONTENT_LENGTH"
	serverHeaderPrefix   = "HTTP_"
	serverHostHeaderName = "HTTP_HOST"
)

// ServerBag holds CGI-style server variables describing the connection
// and the raw request: REMOTE_ADDR, SERVER_NAME, REQUEST_URI, HTTP_*
// header entries and so on.
type ServerBag map[string]string

// NewServerBag builds the server bag of an incoming request.
func NewServerBag(r *http.Request) ServerBag {
	bag := make(ServerBag, len(r.Header)+12)

	if host, port, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		bag[ServerRemoteAddr] = host
		bag[ServerRemotePort] = port
	} else {
		bag[ServerRemoteAddr] = r.RemoteAddr
	}

	name, port := r.Host, ""
	if h, p, err := net.SplitHostPort(r.Host); err == nil {
		name, port = h, p
	}
	if port == "" {
		port = "80"
		if r.TLS != nil {
			port = "443"
		}
	}
	bag[ServerName] = name
	bag[ServerPort] = port
	if r.TLS != nil {
		bag[ServerHTTPS] = "on"
	}

	bag[ServerProtocol] = r.Proto
	bag[ServerRequestMethod] = r.Method
	bag[ServerRequestURI] = r.URL.RequestURI()
	bag[ServerQueryString] = r.URL.RawQuery

	for key, values := range r.Header {
		joined := strings.Join(values, ", ")
		switch key {
		case "Content-Type":
			bag[ServerContentType] = joined
		case "Content-Length":
			bag[ServerContentLength] = joined
		default:
			bag[serverHeaderPrefix+strings.ToUpper(strings.ReplaceAll(key, "-", "_"))] = joined
		}
	}
	if r.Host != "" {
		bag[serverHostHeaderName] = r.Host
	}

	return bag
}

// Headers derives request headers from the HTTP_* entries and the
// CONTENT_TYPE and CONTENT_LENGTH entries. Host is not included.
func (b ServerBag) Headers() http.Header {
	header := make(http.Header)
	for key, value := range b {
		switch {
		case key == ServerContentType:
			header.Set("Content-Type", value)
		case key == ServerContentLength:
			header.Set("Content-Length", value)
		case key == serverHostHeaderName:
		case strings.HasPrefix(key, serverHeaderPrefix):
			name := strings.ReplaceAll(strings.TrimPrefix(key, serverHeaderPrefix), "_", "-")
			header.Set(textproto.CanonicalMIMEHeaderKey(strings.ToLower(name)), value)
		}
	}
	return header
}

// Host returns the requested host, with port if one was given.
func (b ServerBag) Host() string {
	if host := b[serverHostHeaderName]; host != "" {
		return host
	}
	return b[ServerName]
}

// Scheme returns "https" or "http".
func (b ServerBag) Scheme() string {
	if v := b[ServerHTTPS]; v != "" && !strings.EqualFold(v, "off") {
		return "https"
	}
	return "http"
}

// Clone returns a copy of the bag.
func (b ServerBag) Clone() ServerBag {
	return maps.Clone(b)
}
