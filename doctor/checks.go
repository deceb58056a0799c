package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/database"
	"github.com/kbukum/insane/environment"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/process"
	"github.com/kbukum/insane/redis"
)

// MigrateBinary is the migrate CLI looked up on PATH.
const MigrateBinary = "migrate"

const migrateInstall = `To install, run:
      $ go install -tags 'postgres sqlite3' github.com/golang-migrate/migrate/v4/cmd/migrate@latest`

// Default returns a registry with the built-in checks: configuration files,
// the migrate CLI, the database and redis.
func Default(loader *config.Loader, env environment.Environment, appName string) *Registry {
	log := logger.WithComponent("doctor")
	reg := NewRegistry()
	reg.Register(ResourceConfig, ConfigFiles(loader, env, appName))
	reg.Register(ResourceMigrateCLI, MigrateCLI(process.Run))
	reg.Register(ResourceDatabase, Database(log))
	reg.Register(ResourceRedis, Redis(log))
	return reg
}

// ConfigFiles checks which configuration files exist for env. Running on
// defaults alone is allowed, so a missing file is not a failure.
func ConfigFiles(loader *config.Loader, env environment.Environment, appName string) Checker {
	return CheckerFunc(func(context.Context, *config.AppConfig) Check {
		files := loader.Files(env, appName)
		if len(files) == 0 {
			shared, _ := loader.FileNames(env, appName)
			c := notConfigured("Config file: not found, using defaults")
			c.Description = fmt.Sprintf("To create %s, run:\n      $ %s config generate -e %s", shared, appName, env)
			return c
		}
		c := ok("Config file: found")
		c.Description = strings.Join(files, "\n")
		return c
	})
}

// MigrateCLI checks that the migrate CLI is installed. Migrations run
// in-process, so a missing CLI is reported but does not fail the run.
func MigrateCLI(run process.RunFunc) Checker {
	return CheckerFunc(func(ctx context.Context, _ *config.AppConfig) Check {
		v, err := process.Version(ctx, run, MigrateBinary, "-version")
		switch {
		case err == nil:
			c := ok("migrate CLI is installed")
			c.Description = v
			return c
		case errors.Is(err, process.ErrNotFound):
			c := notConfigured("migrate CLI was not found")
			c.Description = migrateInstall
			return c
		default:
			return notOk("migrate CLI is broken", err)
		}
	})
}

// Database connects with the configured settings, pings and verifies that
// the schema is readable.
func Database(log *logger.Logger) Checker {
	return CheckerFunc(func(ctx context.Context, cfg *config.AppConfig) Check {
		if !cfg.Database.Configured() {
			return notConfigured("Database not configured")
		}
		db, err := database.Open(ctx, cfg.Database, log)
		if err != nil {
			return notOk("DB connection: fails", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return notOk("DB connection: fails", err)
		}
		if err := db.VerifyAccess(ctx); err != nil {
			return notOk("DB connection: fails", err)
		}
		return ok("DB connection: success")
	})
}

// Redis connects and pings when a redis URI is configured.
func Redis(log *logger.Logger) Checker {
	return CheckerFunc(func(ctx context.Context, cfg *config.AppConfig) Check {
		if !cfg.Redis.Configured() {
			return notConfigured("Redis not configured")
		}
		client, err := redis.New(cfg.Redis, log)
		if err != nil {
			return notOk("Redis connection: failed", err)
		}
		defer client.Close()

		if err := client.Ping(ctx); err != nil {
			return notOk("Redis connection: failed", err)
		}
		return ok("Redis connection: success")
	})
}
