package kernel

import (
	"context"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
)

// Dispatcher handles requests. The Kernel is the Dispatcher; controllers
// that issue sub-requests depend on this interface only.
type Dispatcher interface {
	Handle(ctx context.Context, req *Request, typ RequestType) (*Response, error)
}

// Controller produces the response of a matched route.
type Controller interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(ctx context.Context, req *Request) (*Response, error)

// Handle calls f.
func (f ControllerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// RequestEvent is passed to request listeners after routing.
type RequestEvent struct {
	Request *Request
	Type    RequestType
}

// RequestListener runs after routing and access checking, before the
// controller. A returned error aborts the request.
type RequestListener interface {
	OnRequest(ctx context.Context, event *RequestEvent) error
}

// RequestListenerFunc adapts a function to RequestListener.
type RequestListenerFunc func(ctx context.Context, event *RequestEvent) error

// OnRequest calls f.
func (f RequestListenerFunc) OnRequest(ctx context.Context, event *RequestEvent) error {
	return f(ctx, event)
}

// RouteFilter narrows or reorders the route table for one request before
// matching. Filters must not mutate the collection they receive.
type RouteFilter interface {
	Filter(routes *routing.Collection, req *Request) *routing.Collection
}

// FormatNegotiator picks the request format. The first negotiator that
// reports ok wins.
type FormatNegotiator interface {
	Negotiate(req *Request) (format string, ok bool)
}

// ErrorRenderer renders errors for the requests it applies to.
type ErrorRenderer interface {
	Applies(req *Request) bool
	Render(req *Request, err *HTTPError) *Response
}
