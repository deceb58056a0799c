package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/doctor"
	"github.com/kbukum/insane/environment"
	"github.com/kbukum/insane/logger"
)

// ExitFailure is returned by Run for every error that stops a command
// before or while it runs.
const ExitFailure = 101

// Command is an application-defined subcommand. Spec declares the usage
// and flags; its RunE is replaced so Execute receives the resolved runtime.
type Command interface {
	Spec() *cobra.Command
	Execute(ctx context.Context, rt *Runtime, cmd *cobra.Command, args []string) error
}

// Runtime is what a command works with once the environment and the
// configuration are resolved.
type Runtime struct {
	Env    environment.Environment
	Config *config.AppConfig
	Loader *config.Loader
	Hooks  app.Hooks
	Out    io.Writer
	Log    *logger.Logger
}

// CLI builds the command tree for an application.
type CLI struct {
	hooks      app.Hooks
	stdout     io.Writer
	stderr     io.Writer
	loaderOpts []config.Option
	sections   []Section
	checks     map[doctor.Resource]doctor.Checker
	commands   []Command
	bootOpts   []app.Option
}

// Option configures a CLI.
type Option func(*CLI)

// WithOutput redirects command output and error reports.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *CLI) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithLoaderOptions adds options to every configuration loader the CLI
// creates, before the ones derived from flags.
func WithLoaderOptions(opts ...config.Option) Option {
	return func(c *CLI) { c.loaderOpts = append(c.loaderOpts, opts...) }
}

// WithConfigSection includes an extra configuration section, such as a
// server's, in config generate and config show.
func WithConfigSection(s Section) Option {
	return func(c *CLI) { c.sections = append(c.sections, s) }
}

// WithDoctorCheck adds an application check to the doctor command.
func WithDoctorCheck(r doctor.Resource, check doctor.Checker) Option {
	return func(c *CLI) { c.checks[r] = check }
}

// WithContextOptions passes options to app.CreateContext on start, for
// example extra components.
func WithContextOptions(opts ...app.Option) Option {
	return func(c *CLI) { c.bootOpts = append(c.bootOpts, opts...) }
}

// New creates a CLI for hooks.
func New(hooks app.Hooks, opts ...Option) *CLI {
	c := &CLI{
		hooks:  hooks,
		stdout: os.Stdout,
		stderr: os.Stderr,
		checks: make(map[doctor.Resource]doctor.Checker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddCommand registers a custom command.
func (c *CLI) AddCommand(cmd Command) {
	c.commands = append(c.commands, cmd)
}

// Run executes the command named by args and returns the process exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	root := c.root()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(c.stderr, "Error: %v\n", err)
	return ExitFailure
}

// exitError carries a command-chosen exit code without an error report.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

const flagEnvironment = "environment"

func (c *CLI) root() *cobra.Command {
	root := &cobra.Command{
		Use:           c.hooks.AppName(),
		Short:         c.hooks.AppName() + " application",
		Version:       c.hooks.AppVersion(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().StringP(flagEnvironment, "e", "",
		"environment to run in (defaults to $"+environment.EnvVar+" or development)")

	root.AddCommand(
		c.startCommand(),
		c.doctorCommand(),
		c.versionCommand(),
		c.completionsCommand(root),
		c.configCommand(),
		c.databaseCommand(),
	)
	for _, custom := range c.commands {
		root.AddCommand(c.customCommand(custom))
	}
	return root
}

func (c *CLI) customCommand(custom Command) *cobra.Command {
	cmd := custom.Spec()
	cmd.Run = nil
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		rt, err := c.runtime(cmd)
		if err != nil {
			return err
		}
		return custom.Execute(cmd.Context(), rt, cmd, args)
	}
	return cmd
}

// runtime resolves the environment and the configuration and installs the
// logger unless the application's InitLogger takes over.
func (c *CLI) runtime(cmd *cobra.Command, overrides ...config.Option) (*Runtime, error) {
	env := c.environment(cmd)
	loader := c.loader(overrides...)

	cfg, err := config.Load[config.AppConfig](loader, env, c.hooks.AppName())
	if err != nil {
		return nil, err
	}

	handled, err := c.hooks.InitLogger(cfg, env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if !handled {
		logger.Init(cfg.Logger)
	}

	return &Runtime{
		Env:    env,
		Config: cfg,
		Loader: loader,
		Hooks:  c.hooks,
		Out:    c.stdout,
		Log:    logger.WithComponent("cli"),
	}, nil
}

func (c *CLI) environment(cmd *cobra.Command) environment.Environment {
	explicit, _ := cmd.Flags().GetString(flagEnvironment)
	return environment.Resolve(explicit)
}

func (c *CLI) loader(overrides ...config.Option) *config.Loader {
	opts := make([]config.Option, 0, len(c.loaderOpts)+len(overrides))
	opts = append(opts, c.loaderOpts...)
	opts = append(opts, overrides...)
	return config.NewLoader(opts...)
}
