package main

import (
	"context"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/database"
	"github.com/kbukum/insane/grpc"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/server"
)

// App wires the example servers into the runtime.
type App struct {
	app.BaseHooks
}

func (*App) AppName() string { return "insane_example" }

func (*App) Initializers(context.Context, *app.Context) ([]app.Initializer, error) {
	return []app.Initializer{
		app.NewInitializer("announce", func(_ context.Context, c *app.Context, _ app.ServerScope) error {
			logger.WithComponent("example").Info("booting", logger.Fields(
				logger.FieldEnvironment, c.Environment().String(),
				"database", c.DB() != nil,
				"redis", c.Redis() != nil,
			))
			return nil
		}),
	}, nil
}

func (*App) Servers(context.Context, *app.Context) ([]app.Server, error) {
	return []app.Server{
		server.New(&httpApp{}),
		grpc.New(grpc.RegisterFunc(registerServices)),
	}, nil
}

func (*App) Truncate(context.Context, *database.DB) error { return nil }

func (*App) Seed(context.Context, *database.DB, string) error { return nil }
