package routing

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// URLGenerator builds paths from named routes.
type URLGenerator struct {
	routes *Collection
}

// NewURLGenerator creates a generator over a route table.
func NewURLGenerator(routes *Collection) *URLGenerator {
	return &URLGenerator{routes: routes}
}

// Generate returns the path of the named route with placeholders
// substituted by the path-escaped parameter values. Parameters that are
// not placeholders are appended as a query string.
func (g *URLGenerator) Generate(name string, params map[string]string) (string, error) {
	route := g.routes.Get(name)
	if route == nil {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}

	segments, err := parseTemplate(route.Path)
	if err != nil {
		return "", fmt.Errorf("route %s: %w", name, err)
	}

	used := make(map[string]bool)
	var b strings.Builder

	for _, seg := range segments {
		if !seg.placeholder {
			b.WriteString(seg.text)
			continue
		}

		value, ok := params[seg.text]
		if !ok {
			return "", fmt.Errorf("route %s: missing parameter %q", name, seg.text)
		}
		if req, ok := route.Requirements[seg.text]; ok && req != "" {
			matched, err := regexp.MatchString("^(?:"+req+")$", value)
			if err != nil || !matched {
				return "", fmt.Errorf("route %s: parameter %q does not match requirement %q", name, seg.text, req)
			}
		}

		b.WriteString(url.PathEscape(value))
		used[seg.text] = true
	}

	extra := url.Values{}
	for k, v := range params {
		if !used[k] {
			extra.Set(k, v)
		}
	}
	if len(extra) > 0 {
		b.WriteByte('?')
		b.WriteString(extra.Encode())
	}

	return b.String(), nil
}
