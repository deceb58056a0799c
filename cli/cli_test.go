package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/cli"
	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/database"
	"github.com/kbukum/insane/doctor"
	"github.com/kbukum/insane/environment"
	"github.com/kbukum/insane/server"
)

const appName = "cli-test"

type testHooks struct {
	app.BaseHooks
	beforeRun  int
	beforeErr  error
	servers    []app.Server
	truncated  bool
	seededPath string
}

func (h *testHooks) AppName() string    { return appName }
func (h *testHooks) AppVersion() string { return "1.2.3" }

func (h *testHooks) InitLogger(*config.AppConfig, environment.Environment) (bool, error) {
	return true, nil
}

func (h *testHooks) BeforeRun(context.Context, *app.Context) error {
	h.beforeRun++
	return h.beforeErr
}

func (h *testHooks) Servers(context.Context, *app.Context) ([]app.Server, error) {
	return h.servers, nil
}

func (h *testHooks) Truncate(context.Context, *database.DB) error {
	h.truncated = true
	return nil
}

func (h *testHooks) Seed(_ context.Context, _ *database.DB, path string) error {
	h.seededPath = path
	return nil
}

func (h *testHooks) Migrations() fs.FS {
	return fstest.MapFS{
		"1_create_users.up.sql":   {Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
		"1_create_users.down.sql": {Data: []byte("DROP TABLE users;")},
	}
}

// httpProbe records the http section each time the supervisor asks whether
// it is enabled, and never serves.
type httpProbe struct {
	cfg *server.Config
}

func (p *httpProbe) Name() string { return "probe" }

func (p *httpProbe) Enable(_ context.Context, c *app.Context) (bool, error) {
	cfg, err := config.LoadKey[server.Config](c.Loader(), server.ConfigKey, c.Environment(), appName)
	if err != nil {
		return false, err
	}
	p.cfg = cfg
	return false, nil
}

func (p *httpProbe) Serve(context.Context, *app.Context) error { return nil }

type harness struct {
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
	cli    *cli.CLI
}

func newHarness(t *testing.T, hooks app.Hooks, environ []string, opts ...cli.Option) *harness {
	t.Helper()
	h := &harness{dir: t.TempDir()}
	base := []cli.Option{
		cli.WithOutput(&h.stdout, &h.stderr),
		cli.WithLoaderOptions(
			config.WithDir(h.dir),
			config.WithEnviron(func() []string { return environ }),
		),
		cli.WithConfigSection(cli.ConfigSection[server.Config](server.ConfigKey)),
	}
	h.cli = cli.New(hooks, append(base, opts...)...)
	return h
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return h.cli.Run(context.Background(), append(args, "-e", "test"))
}

func sqliteEnv(t *testing.T) []string {
	return []string{
		"CLI_TEST_DATABASE_URI=sqlite://" + filepath.Join(t.TempDir(), "cli.db"),
		"CLI_TEST_DATABASE_MAX_RETRIES=1",
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	if code := h.run("version"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "1.2.3" {
		t.Errorf("expected 1.2.3, got %q", got)
	}
}

func TestVersion_Build(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	if code := h.run("version", "--build"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	if len(lines) != 2 || lines[0] != "1.2.3" || !strings.HasPrefix(lines[1], "build: ") {
		t.Errorf("unexpected output %q", h.stdout.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	if code := h.run("frobnicate"); code != cli.ExitFailure {
		t.Errorf("expected exit %d, got %d", cli.ExitFailure, code)
	}
	if !strings.HasPrefix(h.stderr.String(), "Error: ") {
		t.Errorf("expected an error report, got %q", h.stderr.String())
	}
}

func TestCompletions(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	if code := h.run("completions", "bash"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), appName) {
		t.Error("expected the script to mention the application")
	}
	if code := h.run("completions", "tcsh"); code != cli.ExitFailure {
		t.Errorf("expected exit %d for an unknown shell, got %d", cli.ExitFailure, code)
	}
}

func TestConfigGenerate(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	if code := h.run("config", "generate"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}

	_, local := config.FileNames(h.dir, environment.Test, appName)
	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("expected %s to be written: %v", local, err)
	}
	for _, want := range []string{"application_name: " + appName, "http:", "port: 8089", "logger:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected generated file to contain %q", want)
		}
	}

	// The generated file must load back.
	if code := h.run("config", "show"); code != 0 {
		t.Errorf("expected generated config to load, got %d: %s", code, h.stderr.String())
	}
}

func TestConfigShow(t *testing.T) {
	h := newHarness(t, &testHooks{}, []string{"CLI_TEST_HTTP_PORT=9100"})
	if code := h.run("config", "show"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "port: 9100") {
		t.Errorf("expected the env override in output, got:\n%s", h.stdout.String())
	}
}

func TestConfigShow_Malformed(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	shared, _ := config.FileNames(h.dir, environment.Test, appName)
	if err := os.WriteFile(shared, []byte("logger: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := h.run("config", "show"); code != cli.ExitFailure {
		t.Errorf("expected exit %d, got %d", cli.ExitFailure, code)
	}
}

func TestDoctor(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	if code := h.run("doctor"); code != 0 {
		t.Fatalf("expected exit 0, got %d:\n%s%s", code, h.stdout.String(), h.stderr.String())
	}
	for _, want := range []string{"Config file", "Database not configured", "Redis not configured"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, h.stdout.String())
		}
	}
}

func TestDoctor_FailingCheck(t *testing.T) {
	failing := doctor.CheckerFunc(func(context.Context, *config.AppConfig) doctor.Check {
		return doctor.Check{Status: doctor.StatusNotOk, Message: "queue: unreachable"}
	})
	h := newHarness(t, &testHooks{}, nil, cli.WithDoctorCheck(doctor.ResourceCustom, failing))
	if code := h.run("doctor"); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(h.stdout.String(), "queue: unreachable") {
		t.Errorf("expected the failing check in output:\n%s", h.stdout.String())
	}
	if h.stderr.Len() != 0 {
		t.Errorf("expected no error report, got %q", h.stderr.String())
	}
}

func TestStart(t *testing.T) {
	probe := &httpProbe{}
	hooks := &testHooks{servers: []app.Server{probe}}
	h := newHarness(t, hooks, nil)

	if code := h.run("start", "--http", "--binding", "127.0.0.1", "--port", "9300"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if hooks.beforeRun != 1 {
		t.Errorf("expected BeforeRun once, got %d", hooks.beforeRun)
	}
	if probe.cfg == nil {
		t.Fatal("expected the server to be asked whether it is enabled")
	}
	if !probe.cfg.Enable || probe.cfg.Binding != "127.0.0.1" || probe.cfg.Port != 9300 {
		t.Errorf("expected flags applied as overrides, got %+v", probe.cfg)
	}
	if !strings.Contains(h.stdout.String(), appName) {
		t.Errorf("expected the banner on stdout, got %q", h.stdout.String())
	}
}

func TestStart_FlagsUnsetKeepConfig(t *testing.T) {
	probe := &httpProbe{}
	h := newHarness(t, &testHooks{servers: []app.Server{probe}}, []string{"CLI_TEST_HTTP_PORT=9400"})

	if code := h.run("start"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if probe.cfg.Enable || probe.cfg.Port != 9400 {
		t.Errorf("expected configuration untouched, got %+v", probe.cfg)
	}
}

func TestStart_BeforeRunFails(t *testing.T) {
	h := newHarness(t, &testHooks{beforeErr: errors.New("boom")}, nil)
	if code := h.run("start"); code != cli.ExitFailure {
		t.Errorf("expected exit %d, got %d", cli.ExitFailure, code)
	}
	if !strings.Contains(h.stderr.String(), "before_run") {
		t.Errorf("expected the failing hook in the report, got %q", h.stderr.String())
	}
}

func TestStart_AutoMigrate(t *testing.T) {
	env := append(sqliteEnv(t), "CLI_TEST_DATABASE_AUTO_MIGRATE=true")
	h := newHarness(t, &testHooks{}, env)

	if code := h.run("start"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if code := h.run("database", "status"); code != 0 {
		t.Fatalf("status failed: %d %s", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "version:   1") {
		t.Errorf("expected migration 1 applied on start, got:\n%s", h.stdout.String())
	}
}

func TestDatabase_NotConfigured(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	for _, sub := range []string{"create", "migrate", "status", "truncate"} {
		if code := h.run("database", sub); code != cli.ExitFailure {
			t.Errorf("%s: expected exit %d, got %d", sub, cli.ExitFailure, code)
		}
		if !strings.Contains(h.stderr.String(), "database.uri") {
			t.Errorf("%s: expected a configuration error, got %q", sub, h.stderr.String())
		}
	}
}

func TestDatabase_MigrateAndRollback(t *testing.T) {
	h := newHarness(t, &testHooks{}, sqliteEnv(t))

	steps := []struct {
		args    []string
		version string
	}{
		{[]string{"database", "migrate"}, "version:   1"},
		{[]string{"database", "migrate", "--down", "1"}, "version:   0"},
		{[]string{"database", "reset"}, "version:   1"},
	}
	for _, step := range steps {
		if code := h.run(step.args...); code != 0 {
			t.Fatalf("%v: expected exit 0, got %d: %s", step.args, code, h.stderr.String())
		}
		if code := h.run("database", "status"); code != 0 {
			t.Fatalf("status failed: %s", h.stderr.String())
		}
		if !strings.Contains(h.stdout.String(), step.version) {
			t.Errorf("after %v expected %q, got:\n%s", step.args, step.version, h.stdout.String())
		}
	}
}

func TestDatabase_TruncateAndSeed(t *testing.T) {
	hooks := &testHooks{}
	h := newHarness(t, hooks, sqliteEnv(t))

	if code := h.run("database", "truncate"); code != 0 {
		t.Fatalf("truncate: expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if !hooks.truncated {
		t.Error("expected Truncate hook to run")
	}
	if code := h.run("database", "seed", "--path", "fixtures"); code != 0 {
		t.Fatalf("seed: expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if hooks.seededPath != "fixtures" {
		t.Errorf("expected seed path fixtures, got %q", hooks.seededPath)
	}
}

type greetCommand struct{}

func (greetCommand) Spec() *cobra.Command {
	cmd := &cobra.Command{Use: "greet", Short: "Say hello"}
	cmd.Flags().String("name", "world", "who to greet")
	return cmd
}

func (greetCommand) Execute(_ context.Context, rt *cli.Runtime, cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	_, err := rt.Out.Write([]byte("hello " + name + " from " + rt.Env.String() + "\n"))
	return err
}

func TestCustomCommand(t *testing.T) {
	h := newHarness(t, &testHooks{}, nil)
	h.cli.AddCommand(greetCommand{})

	if code := h.run("greet", "--name", "ada"); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, h.stderr.String())
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "hello ada from test" {
		t.Errorf("unexpected output %q", got)
	}
}
