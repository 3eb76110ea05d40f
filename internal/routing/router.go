package routing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
)

// MatchRequest is the part of a request the router looks at.
type MatchRequest struct {
	Method string
	Path   string
	Format string
	Header http.Header
	Query  url.Values
}

// MatchResult contains the result of a route match.
type MatchResult struct {
	Name   string
	Route  *Route
	Params map[string]string
}

// ParamConverter upcasts raw path parameters, e.g. an entity id into a
// loaded entity.
type ParamConverter interface {
	// Applies reports whether the converter handles the definition.
	Applies(def ParamDefinition) bool

	// Convert converts value. A nil result with a nil error means the
	// value does not resolve to anything.
	Convert(ctx context.Context, value string, def ParamDefinition, name string) (any, error)
}

// Router matches requests against a compiled route table.
// A Router is immutable and safe for concurrent use.
type Router struct {
	routes   *Collection
	compiled map[*Route]*compiledRoute
}

// NewRouter compiles all routes of the collection.
func NewRouter(routes *Collection) (*Router, error) {
	r := &Router{
		routes:   routes,
		compiled: make(map[*Route]*compiledRoute, routes.Len()),
	}

	for name, route := range routes.All() {
		c, err := compileRoute(route)
		if err != nil {
			return nil, fmt.Errorf("failed to compile route %s: %w", name, err)
		}
		r.compiled[route] = c
	}

	return r, nil
}

// Routes returns the route table.
func (r *Router) Routes() *Collection {
	return r.routes
}

// Match matches the request against the route table in table order.
func (r *Router) Match(req *MatchRequest) (*MatchResult, error) {
	return r.MatchCollection(r.routes, req)
}

// MatchCollection matches the request against routes in the order of the
// given collection, typically a filtered view of the route table.
//
// Per route the path is checked first, then the condition, the format
// and the method. A path match that fails only on method yields a
// *MethodNotAllowedError, one that fails only on format a
// *NotAcceptableError.
func (r *Router) MatchCollection(routes *Collection, req *MatchRequest) (*MatchResult, error) {
	var allowed []string
	formatMismatch := false

	for name, route := range routes.All() {
		c, err := r.compiledFor(route)
		if err != nil {
			return nil, fmt.Errorf("failed to compile route %s: %w", name, err)
		}

		params, ok := c.matchPath(req.Path)
		if !ok {
			continue
		}

		if c.condition != nil {
			matched, err := c.condition.Evaluate(req)
			if err != nil || !matched {
				continue
			}
		}

		if !slices.Contains(route.Formats(), req.Format) {
			formatMismatch = true
			continue
		}

		if !route.AcceptsMethod(req.Method) {
			for _, m := range route.Methods {
				if !slices.Contains(allowed, m) {
					allowed = append(allowed, m)
				}
			}
			continue
		}

		return &MatchResult{Name: name, Route: route, Params: params}, nil
	}

	switch {
	case len(allowed) > 0:
		return nil, &MethodNotAllowedError{Method: req.Method, Path: req.Path, Allowed: allowed}
	case formatMismatch:
		return nil, &NotAcceptableError{Path: req.Path, Format: req.Format}
	default:
		return nil, &RouteNotFoundError{Method: req.Method, Path: req.Path}
	}
}

// compiledFor returns the compiled form of a route. Routes that a filter
// added outside the table are compiled on demand.
func (r *Router) compiledFor(route *Route) (*compiledRoute, error) {
	if c, ok := r.compiled[route]; ok {
		return c, nil
	}
	return compileRoute(route)
}
