package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/config"
	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/observability"
	"github.com/kbukum/insane/server/middleware"
)

// DefaultName is the unit name of the HTTP server.
const DefaultName = "http_server"

// Server is the HTTP unit: a gin router behind the configured middleware
// stack, served over HTTP/1.1 and h2c. It implements app.Server and
// app.ServerLifecycle.
type Server struct {
	name    string
	hooks   Hooks
	log     *logger.Logger
	metrics *observability.Metrics

	mu   sync.Mutex
	cfg  *Config
	addr net.Addr
}

var (
	_ app.Server          = (*Server)(nil)
	_ app.ServerLifecycle = (*Server)(nil)
)

// Option configures a Server.
type Option func(*Server)

// WithName overrides the unit name.
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithLogger sets the server logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics sets the request metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates an HTTP server driven by hooks.
func New(hooks Hooks, opts ...Option) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{name: DefaultName, hooks: hooks}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent(s.name)
	}
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics()
	}
	return s
}

// Name implements app.Server.
func (s *Server) Name() string { return s.name }

// LoadConfig resolves the `http` section on first use and returns a copy of
// the cached value afterwards.
func (s *Server) LoadConfig(c *app.Context) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		cfg, err := config.LoadKey[Config](c.Loader(), ConfigKey, c.Environment(), c.Config().ApplicationName)
		if err != nil {
			return Config{}, err
		}
		s.cfg = cfg
	}
	return *s.cfg, nil
}

// Enable implements app.Server: the unit runs when http.enable is true.
func (s *Server) Enable(_ context.Context, c *app.Context) (bool, error) {
	cfg, err := s.LoadConfig(c)
	if err != nil {
		return false, err
	}
	return cfg.Enable, nil
}

// BeforeServe delegates to the hooks when they implement app.ServerLifecycle.
func (s *Server) BeforeServe(ctx context.Context, c *app.Context, scope app.ServerScope) error {
	if l, ok := s.hooks.(app.ServerLifecycle); ok {
		return l.BeforeServe(ctx, c, scope)
	}
	return nil
}

// ServerInitializers delegates to the hooks when they implement
// app.ServerLifecycle.
func (s *Server) ServerInitializers(ctx context.Context, c *app.Context, scope app.ServerScope) ([]app.Initializer, error) {
	if l, ok := s.hooks.(app.ServerLifecycle); ok {
		return l.ServerInitializers(ctx, c, scope)
	}
	return nil, nil
}

// Handler builds the full request pipeline for sc: built-in routes, the
// application routes, AfterRoutes and the middleware stack around them.
func (s *Server) Handler(sc *Context) (http.Handler, error) {
	engine := gin.New()
	engine.Use(middleware.RequestMetrics(s.name, s.metrics))
	engine.NoRoute(notFound)
	engine.GET(PathPing, ping)
	engine.GET(PathHealth, health(sc.App, s.log))

	if routes := s.hooks.Routes(sc); routes != nil {
		routes.mount(engine)
	}
	if err := s.hooks.AfterRoutes(engine, sc); err != nil {
		return nil, apperrors.Extension(s.name + " after_routes").WithCause(err)
	}
	s.logRoutes(engine)

	return middleware.Build(sc.Config.Middlewares, s.log)(engine), nil
}

// Serve implements app.Server. It runs the server lifecycle, binds the
// listener and serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, c *app.Context) error {
	cfg, err := s.LoadConfig(c)
	if err != nil {
		return err
	}
	sc := &Context{Config: cfg, App: c, name: s.name}

	if err := app.RunServerLifecycle(ctx, c, sc, s); err != nil {
		return err
	}
	handler, err := s.Handler(sc)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("%s failed to bind %s: %w", s.name, cfg.Addr(), err)
	}
	s.setAddr(ln.Addr())

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          duration(cfg.IdleTimeout),
	}
	httpServer := &http.Server{
		Handler:      h2c.NewHandler(handler, h2s),
		ReadTimeout:  duration(cfg.ReadTimeout),
		WriteTimeout: duration(cfg.WriteTimeout),
		IdleTimeout:  duration(cfg.IdleTimeout),
	}

	s.log.Info(fmt.Sprintf("%s listening on %s", s.name, cfg.Addr()), map[string]interface{}{
		"addr": ln.Addr().String(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down " + s.name)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), duration(cfg.ShutdownTimeout))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown: %w", s.name, err)
	}
	return nil
}

// Addr returns the bound address once Serve is listening, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) setAddr(a net.Addr) {
	s.mu.Lock()
	s.addr = a
	s.mu.Unlock()
}
