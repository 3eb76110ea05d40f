package pathsupport

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/jsonapi"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// ErrMissingEntity is returned when the matched route did not resolve
// an entity.
var ErrMissingEntity = errors.New("request has no entity")

// ResourceTypeResolver maps an entity type and bundle to its JSON:API
// resource type.
type ResourceTypeResolver interface {
	Get(entityTypeID, bundle string) (jsonapi.ResourceType, error)
}

// URLGenerator generates paths from named routes.
type URLGenerator interface {
	Generate(name string, params map[string]string) (string, error)
}

// Forwarder is the controller of synthesized routes.
type Forwarder struct {
	resourceTypes ResourceTypeResolver
	urls          URLGenerator
	dispatcher    kernel.Dispatcher
	logger        observability.Logger
	metrics       *observability.Metrics
}

var _ kernel.Controller = (*Forwarder)(nil)

// ForwarderOption is a functional option for configuring the Forwarder.
type ForwarderOption func(*Forwarder)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) ForwarderOption {
	return func(f *Forwarder) {
		f.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *observability.Metrics) ForwarderOption {
	return func(f *Forwarder) {
		f.metrics = metrics
	}
}

// NewForwarder creates a Forwarder.
func NewForwarder(
	resourceTypes ResourceTypeResolver,
	urls URLGenerator,
	dispatcher kernel.Dispatcher,
	opts ...ForwarderOption,
) *Forwarder {
	f := &Forwarder{
		resourceTypes: resourceTypes,
		urls:          urls,
		dispatcher:    dispatcher,
		logger:        observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Handle implements kernel.Controller.
func (f *Forwarder) Handle(ctx context.Context, req *kernel.Request) (*kernel.Response, error) {
	return f.Forward(ctx, req)
}

// Forward dispatches a GET sub-request for the individual resource of
// the request's entity and returns its response unmodified. The
// sub-request carries the cookies, server variables and query string of
// req; its headers are derived from the server variables.
func (f *Forwarder) Forward(ctx context.Context, req *kernel.Request) (*kernel.Response, error) {
	ref, ok := req.Attributes[EntityParameter].(entity.Referencer)
	if !ok {
		return nil, fmt.Errorf("%w: route %s", ErrMissingEntity, req.Attributes.GetString(kernel.AttrRoute))
	}
	target := ref.Reference()

	rt, err := f.resourceTypes.Get(target.TypeID, target.Bundle)
	if err != nil {
		return nil, err
	}

	path, err := f.urls.Generate(rt.IndividualRoute(), map[string]string{jsonapi.EntityParameter: target.UUID})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s path: %w", rt.TypeName, err)
	}

	sub, err := kernel.NewSubRequest(req, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	sub.SetRawQuery(req.URL.RawQuery)

	f.logger.WithContext(ctx).Debug("forwarding to resource",
		observability.String("route", req.Attributes.GetString(kernel.AttrRoute)),
		observability.String("resource_type", rt.TypeName),
		observability.String("target", sub.URL.RequestURI()),
	)

	resp, err := f.dispatcher.Handle(ctx, sub, kernel.SubRequest)
	if err != nil {
		return nil, err
	}
	if f.metrics != nil {
		f.metrics.RecordForward(rt.TypeName, resp.Status)
	}
	return resp, nil
}
