package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/config"
	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/grpc/interceptor"
	"github.com/kbukum/insane/logger"
)

// DefaultName is the unit name of the gRPC server.
const DefaultName = "grpc_server"

// Server is the gRPC unit. It implements app.Server and app.ServerLifecycle.
type Server struct {
	name     string
	hooks    Hooks
	log      *logger.Logger
	listener net.Listener

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

// WithListener serves on ln instead of binding the configured address.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.listener = ln }
}

// New creates a gRPC server driven by hooks.
func New(hooks Hooks, opts ...Option) *Server {
	s := &Server{name: DefaultName, hooks: hooks}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent(s.name)
	}
	return s
}

// Name implements app.Server.
func (s *Server) Name() string { return s.name }

// LoadConfig resolves the `grpc` section on first use and returns a copy of
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

// Enable implements app.Server: the unit runs when grpc.enable is true.
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

func (s *Server) newGRPCServer(cfg Config) *gogrpc.Server {
	return gogrpc.NewServer(
		gogrpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		gogrpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		gogrpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    duration(cfg.Keepalive.Time),
			Timeout: duration(cfg.Keepalive.Timeout),
		}),
		gogrpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             duration(cfg.Keepalive.MinTime),
			PermitWithoutStream: cfg.Keepalive.PermitWithoutStream,
		}),
		gogrpc.ChainUnaryInterceptor(
			interceptor.UnaryServerRecovery(s.log),
			interceptor.UnaryServerLogging(s.log),
			interceptor.UnaryServerErrors(),
		),
		gogrpc.ChainStreamInterceptor(
			interceptor.StreamServerRecovery(s.log),
			interceptor.StreamServerLogging(s.log),
			interceptor.StreamServerErrors(),
		),
	)
}

// Serve implements app.Server. It runs the server lifecycle, registers the
// health service, reflection and the application services, and serves
// until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, c *app.Context) error {
	cfg, err := s.LoadConfig(c)
	if err != nil {
		return err
	}
	sc := &Context{Config: cfg, App: c, name: s.name}

	if err := app.RunServerLifecycle(ctx, c, sc, s); err != nil {
		return err
	}

	srv := s.newGRPCServer(cfg)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	if cfg.Reflection {
		reflection.Register(srv)
	}
	if err := s.hooks.Register(srv, sc); err != nil {
		return apperrors.Extension(s.name + " register").WithCause(err)
	}
	for name := range srv.GetServiceInfo() {
		healthSrv.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	ln := s.listener
	if ln == nil {
		ln, err = net.Listen("tcp", cfg.Addr())
		if err != nil {
			return fmt.Errorf("%s failed to bind %s: %w", s.name, cfg.Addr(), err)
		}
	}
	s.setAddr(ln.Addr())
	s.log.Info(fmt.Sprintf("%s listening on %s", s.name, cfg.Addr()), map[string]interface{}{
		"addr": ln.Addr().String(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, gogrpc.ErrServerStopped) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down " + s.name)
	healthSrv.Shutdown()
	s.gracefulStop(srv, duration(cfg.ShutdownTimeout))
	return nil
}

// gracefulStop waits for in-flight RPCs up to timeout, then forces the stop.
func (s *Server) gracefulStop(srv *gogrpc.Server, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.log.Warn(s.name + " graceful stop timed out, forcing")
		srv.Stop()
		<-done
	}
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
