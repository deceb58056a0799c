package grpc_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/environment"
	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/grpc"
	"github.com/kbukum/insane/logger"
)

func newAppContext(t *testing.T, overrides map[string]any) *app.Context {
	t.Helper()
	opts := []config.Option{
		config.WithDir(t.TempDir()),
		config.WithEnviron(func() []string { return nil }),
	}
	for k, v := range overrides {
		opts = append(opts, config.WithOverride(k, v))
	}
	cfg := config.Defaults[config.AppConfig]()
	cfg.ApplicationName = "test-app"

	c, err := app.CreateContext(context.Background(), environment.Test, &cfg,
		app.WithLoader(config.NewLoader(opts...)), app.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

type recordingHooks struct {
	mu       sync.Mutex
	services []string
	scope    string
	err      error
}

func (h *recordingHooks) Register(srv *gogrpc.Server, sc *grpc.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name := range srv.GetServiceInfo() {
		h.services = append(h.services, name)
	}
	h.scope = sc.ServerName()
	return h.err
}

func (h *recordingHooks) has(service string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.services {
		if s == service {
			return true
		}
	}
	return false
}

func TestConfig_Defaults(t *testing.T) {
	var cfg grpc.Config
	cfg.ApplyDefaults()

	if cfg.Port != 50051 {
		t.Errorf("expected port 50051, got %d", cfg.Port)
	}
	if cfg.Addr() != "[::]:50051" {
		t.Errorf("expected [::]:50051, got %s", cfg.Addr())
	}
	if cfg.Enable || cfg.Reflection {
		t.Error("expected the server and reflection to be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *grpc.Config)
		wantErr bool
	}{
		{"valid", func(*grpc.Config) {}, false},
		{"no binding", func(c *grpc.Config) { c.Binding = "" }, true},
		{"bad keepalive", func(c *grpc.Config) { c.Keepalive.Time = "often" }, true},
		{"negative shutdown", func(c *grpc.Config) { c.ShutdownTimeout = "-1s" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg grpc.Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestServer_EnableFollowsConfig(t *testing.T) {
	s := grpc.New(&recordingHooks{}, grpc.WithLogger(logger.Nop()))
	enabled, err := s.Enable(context.Background(), newAppContext(t, map[string]any{"grpc.enable": true}))
	if err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !enabled {
		t.Error("expected the server to be enabled")
	}
	if s.Name() != "grpc_server" {
		t.Errorf("expected grpc_server, got %s", s.Name())
	}
}

func waitForAddr(t *testing.T, s *grpc.Server) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.Addr() != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never started listening")
}

func TestServe_HealthAndShutdown(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	hooks := &recordingHooks{}
	s := grpc.New(hooks, grpc.WithLogger(logger.Nop()), grpc.WithListener(lis))
	c := newAppContext(t, map[string]any{"grpc.enable": true, "grpc.reflection": true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, c) }()
	waitForAddr(t, s)

	conn, err := gogrpc.NewClient("passthrough:///bufnet",
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	resp, err := healthpb.NewHealthClient(conn).Check(callCtx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", resp.GetStatus())
	}

	if !hooks.has("grpc.health.v1.Health") {
		t.Errorf("expected the health service before Register, got %v", hooks.services)
	}
	if !hooks.has("grpc.reflection.v1.ServerReflection") {
		t.Errorf("expected reflection to be registered, got %v", hooks.services)
	}
	if hooks.scope != "grpc_server" {
		t.Errorf("expected scope grpc_server, got %s", hooks.scope)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestServe_RegisterFailure(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.New(&recordingHooks{err: errors.New("bad service")},
		grpc.WithLogger(logger.Nop()), grpc.WithListener(lis))

	err := s.Serve(context.Background(), newAppContext(t, nil))
	if !apperrors.Is(err, apperrors.ErrCodeExtension) {
		t.Fatalf("expected EXTENSION_FAILED, got %v", err)
	}
	if s.Addr() != nil {
		t.Error("expected no listener after a register failure")
	}
}

func TestRegisterFunc(t *testing.T) {
	called := false
	var h grpc.Hooks = grpc.RegisterFunc(func(*gogrpc.Server, *grpc.Context) error {
		called = true
		return nil
	})
	if err := h.Register(nil, &grpc.Context{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected the function to be called")
	}
}
