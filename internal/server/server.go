package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/health"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// readHeaderTimeout bounds reading request headers.
const readHeaderTimeout = 10 * time.Second

var ginModeOnce sync.Once

// State represents the server state.
type State int32

const (
	// StateStopped indicates the server is stopped.
	StateStopped State = iota
	// StateStarting indicates the server is starting.
	StateStarting
	// StateRunning indicates the server is running.
	StateRunning
	// StateStopping indicates the server is stopping.
	StateStopping
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Server is the HTTP server.
type Server struct {
	cfg     config.ServerConfig
	logger  observability.Logger
	engine  *gin.Engine
	handler http.Handler
	health  *health.Handler

	metricsPath    string
	metricsHandler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
	served     chan struct{}

	state     atomic.Int32
	startTime time.Time
}

// Option is a functional option for configuring the server.
type Option func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHealth mounts the health endpoints.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMetricsHandler mounts the metrics endpoint at path.
func WithMetricsHandler(path string, handler http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metricsHandler = handler
	}
}

// New creates a server that passes requests not claimed by the health
// or metrics endpoints to handler.
func New(cfg config.ServerConfig, handler http.Handler, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	s := &Server{
		cfg:     cfg,
		handler: handler,
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.engine = s.newEngine()
	s.state.Store(int32(StateStopped))

	return s, nil
}

func (s *Server) newEngine() *gin.Engine {
	ginModeOnce.Do(func() { gin.SetMode(gin.ReleaseMode) })
	engine := gin.New()
	engine.RedirectTrailingSlash = false

	if s.health != nil {
		s.health.RegisterRoutes(engine)
	}
	if s.metricsHandler != nil {
		engine.GET(s.metricsPath, gin.WrapH(s.metricsHandler))
	}

	// gin presets 404 before NoRoute handlers run.
	engine.NoRoute(func(c *gin.Context) {
		c.Status(http.StatusOK)
		s.handler.ServeHTTP(c.Writer, c.Request)
	})
	return engine
}

// Engine returns the gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start starts listening and serving in the background.
func (s *Server) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return fmt.Errorf("server is not in stopped state")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		s.state.Store(int32(StateStopped))
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadTimeout:       s.cfg.ReadTimeout.Duration(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout.Duration(),
		IdleTimeout:       s.cfg.IdleTimeout.Duration(),
		MaxHeaderBytes:    s.cfg.MaxHeaderBytes,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr().String()
	s.served = make(chan struct{})
	served := s.served
	s.mu.Unlock()

	if s.health != nil {
		s.health.SetDraining(false)
	}
	s.startTime = time.Now()
	s.state.Store(int32(StateRunning))

	s.logger.Info("server started", observability.String("address", s.Addr()))

	go func() {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", observability.Error(err))
		}
	}()

	return nil
}

// Stop stops the server gracefully. Readiness reports draining while
// in-flight requests finish.
func (s *Server) Stop(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return fmt.Errorf("server is not running")
	}
	defer s.state.Store(int32(StateStopped))

	s.logger.Info("stopping server")

	if s.health != nil {
		s.health.SetDraining(true)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout.Duration())
		defer cancel()
	}

	s.mu.Lock()
	srv, served := s.httpServer, s.served
	s.mu.Unlock()

	if err := srv.Shutdown(ctx); err != nil {
		if closeErr := srv.Close(); closeErr != nil {
			return fmt.Errorf("failed to close server: %w", closeErr)
		}
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}
	<-served

	s.logger.Info("server stopped")
	return nil
}

// Addr returns the bound listen address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// State returns the current server state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	return s.State() == StateRunning
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	if !s.IsRunning() {
		return 0
	}
	return time.Since(s.startTime)
}
