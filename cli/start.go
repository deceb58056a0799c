package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/bootstrap"
	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/database"
	"github.com/kbukum/insane/grpc"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/observability"
	"github.com/kbukum/insane/server"
)

func (c *CLI) startCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the application servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.start(cmd, startOverrides(cmd))
		},
	}
	f := cmd.Flags()
	f.Bool("http", false, "enable the HTTP server")
	f.Bool("grpc", false, "enable the gRPC server")
	f.StringP("binding", "b", "", "address the HTTP server listens on")
	f.IntP("port", "p", 0, "port the HTTP server listens on")
	return cmd
}

// startOverrides turns the flags the user set into configuration overrides.
func startOverrides(cmd *cobra.Command) []config.Option {
	var opts []config.Option
	f := cmd.Flags()
	if f.Changed("http") {
		v, _ := f.GetBool("http")
		opts = append(opts, config.WithOverride(server.ConfigKey+".enable", v))
	}
	if f.Changed("grpc") {
		v, _ := f.GetBool("grpc")
		opts = append(opts, config.WithOverride(grpc.ConfigKey+".enable", v))
	}
	if f.Changed("binding") {
		v, _ := f.GetString("binding")
		opts = append(opts, config.WithOverride(server.ConfigKey+".binding", v))
	}
	if f.Changed("port") {
		v, _ := f.GetInt("port")
		opts = append(opts, config.WithOverride(server.ConfigKey+".port", v))
	}
	return opts
}

func (c *CLI) start(cmd *cobra.Command, overrides []config.Option) error {
	rt, err := c.runtime(cmd, overrides...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.Setup(ctx, rt.Config.Telemetry,
		c.hooks.AppName(), c.hooks.AppVersion(), rt.Env.String())
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			rt.Log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	opts := append([]app.Option{app.WithLoader(rt.Loader)}, c.bootOpts...)
	appCtx, err := app.CreateContext(ctx, rt.Env, rt.Config, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := appCtx.Close(context.WithoutCancel(ctx)); err != nil {
			rt.Log.Warn("closing application context failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	if db := appCtx.DB(); db != nil {
		err := database.Prepare(ctx, db, rt.Config.Database, c.migrator(rt, db), c.truncate(), rt.Log)
		if err != nil {
			return err
		}
	}

	return bootstrap.New(c.hooks, appCtx, bootstrap.WithOutput(c.stdout)).Boot(ctx)
}
