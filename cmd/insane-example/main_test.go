package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/cli"
	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/environment"
	"github.com/kbukum/insane/server"
)

func newContext(t *testing.T, redisURI string) *app.Context {
	t.Helper()
	cfg := config.Defaults[config.AppConfig]()
	cfg.ApplicationName = "insane_example"
	cfg.Redis.URI = redisURI
	c, err := app.CreateContext(context.Background(), environment.Test, &cfg,
		app.WithLoader(config.NewLoader(config.WithDir(t.TempDir()), config.WithEnviron(func() []string { return nil }))))
	if err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func handler(t *testing.T, c *app.Context, h *httpApp) http.Handler {
	t.Helper()
	srv := server.New(h)
	if err := h.BeforeServe(context.Background(), c, nil); err != nil {
		t.Fatalf("BeforeServe failed: %v", err)
	}
	cfg, err := srv.LoadConfig(c)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	hd, err := srv.Handler(&server.Context{Config: cfg, App: c})
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	return hd
}

func TestPingUser_NoRedis(t *testing.T) {
	hd := handler(t, newContext(t, ""), &httpApp{})

	rec := httptest.NewRecorder()
	hd.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping_user", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestPingUser_CountsWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	hd := handler(t, newContext(t, "redis://"+mr.Addr()+"/0"), &httpApp{})

	var last pingStats
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		hd.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping_user", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Data pingStats `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		last = body.Data
	}
	if last.Count != 2 {
		t.Errorf("expected count 2, got %d", last.Count)
	}
}

func TestTestUserCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	c := cli.New(&App{},
		cli.WithOutput(&out, &errOut),
		cli.WithLoaderOptions(config.WithDir(t.TempDir()), config.WithEnviron(func() []string { return nil })),
	)
	c.AddCommand(testUserCommand{})

	if code := c.Run(context.Background(), []string{"test-user", "-t", "abc", "-e", "test"}); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut.String())
	}
	want := "test-user: test=abc environment=test application=insane_example"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
