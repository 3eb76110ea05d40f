package pathsupport

import (
	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
)

// RouteFilter evaluates synthesized routes first for JSON:API requests.
type RouteFilter struct{}

var _ kernel.RouteFilter = RouteFilter{}

// Filter returns routes unchanged unless the Content-Type header is
// exactly MediaType. Otherwise it returns a new collection holding the
// routes of ControllerName followed by all other routes, each group in
// its original order.
func (RouteFilter) Filter(routes *routing.Collection, req *kernel.Request) *routing.Collection {
	if req.Header.Get("Content-Type") != MediaType {
		return routes
	}

	own := routing.NewCollection()
	others := routing.NewCollection()
	for name, route := range routes.All() {
		if route.Controller() == ControllerName {
			own.Add(name, route)
		} else {
			others.Add(name, route)
		}
	}

	own.AddCollection(others)
	return own
}
