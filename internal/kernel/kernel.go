package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

// ErrNoRoutes is returned by Handle before the first SetRoutes call.
var ErrNoRoutes = errors.New("route table not initialized")

// Kernel is the request dispatcher.
//
// The Add* and Register* methods must be called before the kernel
// serves requests. SetRoutes may be called at any time.
type Kernel struct {
	router atomic.Pointer[routing.Router]

	negotiators []FormatNegotiator
	filters     []RouteFilter
	converters  []routing.ParamConverter
	listeners   []RequestListener
	renderers   []ErrorRenderer
	controllers map[string]Controller

	logger  observability.Logger
	tracer  *observability.Tracer
	metrics *observability.Metrics
}

// Option is a functional option for configuring the kernel.
type Option func(*Kernel)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer *observability.Tracer) Option {
	return func(k *Kernel) {
		k.tracer = tracer
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(k *Kernel) {
		k.metrics = metrics
	}
}

// New creates a kernel.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		controllers: make(map[string]Controller),
		logger:      observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.tracer == nil {
		k.tracer, _ = observability.NewTracer(observability.TracerConfig{ServiceName: "pathsupport"})
	}
	return k
}

// AddFormatNegotiator appends a format negotiator.
func (k *Kernel) AddFormatNegotiator(n FormatNegotiator) {
	k.negotiators = append(k.negotiators, n)
}

// AddRouteFilter appends a route filter.
func (k *Kernel) AddRouteFilter(f RouteFilter) {
	k.filters = append(k.filters, f)
}

// AddParamConverter appends a parameter converter.
func (k *Kernel) AddParamConverter(c routing.ParamConverter) {
	k.converters = append(k.converters, c)
}

// AddRequestListener appends a request listener.
func (k *Kernel) AddRequestListener(l RequestListener) {
	k.listeners = append(k.listeners, l)
}

// AddErrorRenderer appends an error renderer.
func (k *Kernel) AddErrorRenderer(r ErrorRenderer) {
	k.renderers = append(k.renderers, r)
}

// RegisterController binds a controller name used in route defaults.
func (k *Kernel) RegisterController(name string, c Controller) {
	k.controllers[name] = c
}

// SetRoutes compiles the route table and swaps it in atomically. On
// error the previous table stays active.
func (k *Kernel) SetRoutes(routes *routing.Collection) error {
	router, err := k.CompileRoutes(routes)
	if err != nil {
		return err
	}
	k.SetRouter(router)
	return nil
}

// CompileRoutes compiles a route table without activating it.
func (k *Kernel) CompileRoutes(routes *routing.Collection) (*routing.Router, error) {
	router, err := routing.NewRouter(routes)
	if k.metrics != nil {
		k.metrics.RecordRouteTableBuild(routes.Len(), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}
	return router, nil
}

// SetRouter activates a compiled route table.
func (k *Kernel) SetRouter(router *routing.Router) {
	k.router.Store(router)
	k.logger.Info("route table updated", observability.Int("routes", router.Routes().Len()))
}

// Routes returns the active route table, or nil.
func (k *Kernel) Routes() *routing.Collection {
	if r := k.router.Load(); r != nil {
		return r.Routes()
	}
	return nil
}

// Generate builds a path from a named route of the active table.
func (k *Kernel) Generate(name string, params map[string]string) (string, error) {
	r := k.router.Load()
	if r == nil {
		return "", ErrNoRoutes
	}
	return routing.NewURLGenerator(r.Routes()).Generate(name, params)
}

// FilterRoutes applies the registered route filters to routes.
func (k *Kernel) FilterRoutes(routes *routing.Collection, req *Request) *routing.Collection {
	for _, f := range k.filters {
		routes = f.Filter(routes, req)
	}
	return routes
}

// ServeHTTP implements http.Handler for main requests.
func (k *Kernel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var resp *Response

	req, err := NewRequest(r)
	if err != nil {
		resp = k.renderError(&Request{Method: r.Method, URL: r.URL, Attributes: make(Attributes)}, err)
	} else {
		resp, err = k.Handle(r.Context(), req, MainRequest)
		if err != nil {
			resp = k.renderError(req, err)
		}
	}

	if err := resp.Write(w, r.Method); err != nil {
		k.logger.WithContext(r.Context()).Debug("failed to write response", observability.Error(err))
	}
}

// Handle handles a request. Errors raised while handling are rendered
// into the returned response.
func (k *Kernel) Handle(ctx context.Context, req *Request, typ RequestType) (*Response, error) {
	ctx, span := k.tracer.StartSpan(ctx, "kernel."+typ.String()+"_request",
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	resp, err := k.handle(ctx, req, typ)
	if err != nil {
		resp = k.renderError(req, err)
		if resp.Status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, err.Error())
			k.logger.WithContext(ctx).Error("request failed",
				observability.String("request_type", typ.String()),
				observability.String("method", req.Method),
				observability.String("path", req.URL.Path),
				observability.Error(err),
			)
		}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	if route := req.Attributes.GetString(AttrRoute); route != "" {
		span.SetAttributes(attribute.String("http.route", route))
	}

	return resp, nil
}

func (k *Kernel) handle(ctx context.Context, req *Request, typ RequestType) (*Response, error) {
	router := k.router.Load()
	if router == nil {
		return nil, ErrNoRoutes
	}

	req.SetFormat(k.negotiate(req))

	routes := k.FilterRoutes(router.Routes(), req)
	result, err := router.MatchCollection(routes, &routing.MatchRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Format: req.Format(),
		Header: req.Header,
		Query:  req.Query(),
	})
	if err != nil {
		return nil, err
	}

	k.populateAttributes(ctx, req, typ, result)

	if err := k.convertParameters(ctx, req, result); err != nil {
		return nil, err
	}

	if access, _ := result.Route.Requirement(routing.RequirementAccess); access != routing.AccessAllowed {
		return nil, Forbidden("access denied")
	}

	event := &RequestEvent{Request: req, Type: typ}
	for _, l := range k.listeners {
		if err := l.OnRequest(ctx, event); err != nil {
			return nil, err
		}
	}

	name := req.Attributes.GetString(AttrController)
	controller, ok := k.controllers[name]
	if !ok {
		return nil, fmt.Errorf("no controller registered as %q for route %s", name, result.Name)
	}

	resp, err := controller.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("controller %q returned no response", name)
	}
	return resp, nil
}

// negotiate returns the request format: the first negotiator's answer,
// else the _format query value, else html.
func (k *Kernel) negotiate(req *Request) string {
	for _, n := range k.negotiators {
		if format, ok := n.Negotiate(req); ok {
			return format
		}
	}
	if format := req.Query().Get(QueryFormat); format != "" {
		return format
	}
	return routing.FormatHTML
}

func (k *Kernel) populateAttributes(ctx context.Context, req *Request, typ RequestType, result *routing.MatchResult) {
	for key, value := range result.Route.Defaults {
		req.Attributes.Set(key, value)
	}
	for key, value := range result.Params {
		req.Attributes.Set(key, value)
	}
	req.Attributes.Set(AttrRoute, result.Name)
	req.Attributes.Set(AttrRouteObject, result.Route)
	req.Attributes.Set(AttrRawParameters, result.Params)

	if typ == MainRequest {
		if holder := util.RouteHolderFromContext(ctx); holder != nil {
			holder.Name = result.Name
		}
	}
	if k.metrics != nil {
		k.metrics.RecordRouteMatch(result.Name, typ.String())
	}

	k.logger.WithContext(ctx).Debug("route matched",
		observability.String("route", result.Name),
		observability.String("request_type", typ.String()),
		observability.String("format", req.Format()),
		observability.String("controller", result.Route.Controller()),
	)
}

func (k *Kernel) convertParameters(ctx context.Context, req *Request, result *routing.MatchResult) error {
	for name, def := range result.Route.Parameters() {
		raw, ok := result.Params[name]
		if !ok {
			continue
		}

		converter := k.converterFor(def)
		if converter == nil {
			return fmt.Errorf("no converter for parameter %q of type %q", name, def.Type)
		}

		value, err := converter.Convert(ctx, raw, def, name)
		if err != nil {
			return fmt.Errorf("failed to convert parameter %q: %w", name, err)
		}
		if value == nil {
			return NotFound(fmt.Sprintf("%s %q not found", def.Type, raw))
		}
		req.Attributes.Set(name, value)
	}
	return nil
}

func (k *Kernel) converterFor(def routing.ParamDefinition) routing.ParamConverter {
	for _, c := range k.converters {
		if c.Applies(def) {
			return c
		}
	}
	return nil
}

func (k *Kernel) renderError(req *Request, err error) *Response {
	httpErr := AsHTTPError(err)

	var resp *Response
	for _, r := range k.renderers {
		if r.Applies(req) {
			resp = r.Render(req, httpErr)
			break
		}
	}
	if resp == nil {
		resp = jsonErrorRenderer{}.Render(req, httpErr)
	}

	for key, values := range httpErr.Header {
		resp.Header[key] = values
	}
	return resp
}
