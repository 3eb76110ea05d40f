package pathsupport

import (
	"context"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
)

// RequestValidatorDecorator removes the _format query parameter from
// requests routed to ControllerName before the wrapped validator sees
// them.
type RequestValidatorDecorator struct {
	inner kernel.RequestListener
}

var _ kernel.RequestListener = (*RequestValidatorDecorator)(nil)

// NewRequestValidatorDecorator wraps inner.
func NewRequestValidatorDecorator(inner kernel.RequestListener) *RequestValidatorDecorator {
	return &RequestValidatorDecorator{inner: inner}
}

// OnRequest implements kernel.RequestListener. Errors of the wrapped
// validator are returned unchanged.
func (d *RequestValidatorDecorator) OnRequest(ctx context.Context, event *kernel.RequestEvent) error {
	req := event.Request
	if req.Attributes.GetString(kernel.AttrController) == ControllerName && req.HasQuery(kernel.QueryFormat) {
		req.RemoveQuery(kernel.QueryFormat)
	}
	return d.inner.OnRequest(ctx, event)
}
