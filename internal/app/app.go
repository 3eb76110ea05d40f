package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/cache"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/entity"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/health"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/html"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/jsonapi"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/middleware"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/pathsupport"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/server"
)

// Application is the assembled site.
type Application struct {
	logger  observability.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer
	version string

	storage *entity.Storage
	cache   cache.Cache
	kernel  *kernel.Kernel
	health  *health.Handler
	handler http.Handler
	server  *server.Server

	site atomic.Pointer[Site]

	mu  sync.Mutex
	cfg *config.Config
}

// Option is a functional option for configuring the application.
type Option func(*Application)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(a *Application) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(a *Application) {
		a.metrics = metrics
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer *observability.Tracer) Option {
	return func(a *Application) {
		a.tracer = tracer
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(version string) Option {
	return func(a *Application) {
		a.version = version
	}
}

// New assembles the application from configuration: it opens and seeds
// the entity store, builds the kernel and the route table, and wraps the
// kernel in the middleware stack.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}

	a := &Application{cfg: cfg, logger: observability.NopLogger()}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = observability.NewMetrics("pathsupport")
	}
	if a.tracer == nil {
		tracer, err := observability.NewTracer(observability.TracerConfig{
			ServiceName:  cfg.Tracing.ServiceName,
			OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
			SamplingRate: cfg.Tracing.SamplingRate,
			Enabled:      cfg.Tracing.Enabled,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer: %w", err)
		}
		a.tracer = tracer
	}

	storage, err := entity.OpenStorage(ctx, cfg.Storage.DSN, a.logger)
	if err != nil {
		return nil, err
	}
	a.storage = storage

	if _, err := entity.Seed(ctx, storage, cfg.Fixtures, a.logger); err != nil {
		_ = storage.Close()
		return nil, err
	}

	site := BuildSite(cfg)
	a.site.Store(site)

	a.kernel = a.newKernel(cfg)
	if err := a.kernel.SetRoutes(site.Routes); err != nil {
		_ = storage.Close()
		return nil, err
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(&cfg.Cache, a.logger)
		if err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("failed to create page cache: %w", err)
		}
		a.cache = c
	}

	a.handler = a.newHandler(cfg)

	a.health = health.NewHandler(a.logger, health.WithVersion(a.version))
	a.health.AddCheck(health.PingCheck("storage", storage))
	a.health.AddCheck(health.RouteTableCheck(a.routeCount))

	serverOpts := []server.Option{server.WithLogger(a.logger), server.WithHealth(a.health)}
	if cfg.Metrics.Enabled {
		serverOpts = append(serverOpts, server.WithMetricsHandler(cfg.Metrics.Path, a.metrics.Handler()))
	}
	a.server, err = server.New(cfg.Server, a.handler, serverOpts...)
	if err != nil {
		_ = a.closeResources()
		return nil, err
	}

	a.logger.Info("application assembled",
		observability.Int("entity_types", len(site.Catalog.Definitions())),
		observability.Int("resource_types", len(site.ResourceTypes.All())),
		observability.Int("routes", site.Routes.Len()),
	)

	return a, nil
}

// newKernel registers the site's components. Controllers and the
// forwarder read the catalog and resource types of the current site, so
// Reload only has to swap the site and the route table.
func (a *Application) newKernel(cfg *config.Config) *kernel.Kernel {
	k := kernel.New(
		kernel.WithLogger(a.logger),
		kernel.WithTracer(a.tracer),
		kernel.WithMetrics(a.metrics),
	)

	catalog := siteCatalog{site: &a.site}
	resourceTypes := siteResourceTypes{site: &a.site}

	k.AddFormatNegotiator(jsonapi.NewFormatSetter(cfg.JSONAPI.BasePath))
	k.AddRouteFilter(pathsupport.RouteFilter{})
	k.AddParamConverter(entity.NewConverter(a.storage))
	k.AddRequestListener(pathsupport.NewRequestValidatorDecorator(jsonapi.RequestValidator{}))
	k.AddErrorRenderer(jsonapi.ErrorRenderer{})

	dispatcher := middleware.DispatcherFromConfig(&cfg.CircuitBreaker, k,
		middleware.WithCircuitBreakerLogger(a.logger),
		middleware.WithCircuitBreakerStateCallback(a.metrics.SetCircuitBreakerState),
	)

	k.RegisterController(html.ControllerName, html.NewController(catalog))
	k.RegisterController(jsonapi.ControllerName, jsonapi.NewController(resourceTypes, a.storage, k, a.logger))
	k.RegisterController(pathsupport.ControllerName, pathsupport.NewForwarder(resourceTypes, k, dispatcher,
		pathsupport.WithLogger(a.logger),
		pathsupport.WithMetrics(a.metrics),
	))

	return k
}

// newHandler wraps the kernel in the middleware stack, outermost first.
func (a *Application) newHandler(cfg *config.Config) http.Handler {
	mws := []func(http.Handler) http.Handler{
		middleware.Recovery(a.logger),
		middleware.RequestID(),
		observability.TracingMiddleware(a.tracer),
		observability.MetricsMiddleware(a.metrics),
		middleware.Logging(a.logger),
		middleware.RateLimitFromConfig(&cfg.RateLimit, a.logger, a.metrics),
	}
	if a.cache != nil {
		mws = append(mws, middleware.PageCache(a.cache, cfg.Cache.TTL.Duration(), a.logger, a.metrics))
	}
	return middleware.Chain(a.kernel, mws...)
}

func (a *Application) routeCount() int {
	if routes := a.kernel.Routes(); routes != nil {
		return routes.Len()
	}
	return 0
}

// Handler returns the site handler: the kernel behind the middleware
// stack.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Kernel returns the kernel.
func (a *Application) Kernel() *kernel.Kernel {
	return a.kernel
}

// Server returns the HTTP server.
func (a *Application) Server() *server.Server {
	return a.server
}

// Site returns the current site.
func (a *Application) Site() *Site {
	return a.site.Load()
}

// Storage returns the entity store.
func (a *Application) Storage() *entity.Storage {
	return a.storage
}

// Start starts the HTTP server.
func (a *Application) Start(ctx context.Context) error {
	return a.server.Start(ctx)
}

// Reload applies a new configuration. Entity types, resource type names
// and fixtures take effect immediately; other sections are only read at
// startup. The new route table is compiled before anything changes, so
// on error the previous site stays active and no fixtures are seeded.
func (a *Application) Reload(ctx context.Context, cfg *config.Config) error {
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.warnStaticChanges(cfg)

	site := BuildSite(cfg)
	router, err := a.kernel.CompileRoutes(site.Routes)
	if err != nil {
		return err
	}

	if _, err := entity.Seed(ctx, a.storage, cfg.Fixtures, a.logger); err != nil {
		return err
	}

	a.site.Store(site)
	a.kernel.SetRouter(router)
	a.cfg = cfg

	a.logger.Info("site reloaded",
		observability.Int("entity_types", len(site.Catalog.Definitions())),
		observability.Int("routes", site.Routes.Len()),
	)
	return nil
}

func (a *Application) warnStaticChanges(cfg *config.Config) {
	changed := make([]string, 0)
	if cfg.Server != a.cfg.Server {
		changed = append(changed, "server")
	}
	if cfg.Storage != a.cfg.Storage {
		changed = append(changed, "storage")
	}
	if cfg.JSONAPI.BasePath != a.cfg.JSONAPI.BasePath {
		changed = append(changed, "jsonapi.basePath")
	}
	if cfg.RateLimit != a.cfg.RateLimit {
		changed = append(changed, "rateLimit")
	}
	if cfg.CircuitBreaker != a.cfg.CircuitBreaker {
		changed = append(changed, "circuitBreaker")
	}
	if len(changed) > 0 {
		a.logger.Warn("configuration changes require a restart",
			observability.Strings("sections", changed))
	}
}

// Shutdown stops the server if running and releases all resources.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if a.server.IsRunning() {
		errs = append(errs, a.server.Stop(ctx))
	}
	errs = append(errs, a.closeResources(), a.tracer.Shutdown(ctx))
	return errors.Join(errs...)
}

func (a *Application) closeResources() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.storage.Close())
	return errors.Join(errs...)
}
