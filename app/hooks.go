package app

import (
	"context"
	"io/fs"

	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/database"
	"github.com/kbukum/insane/environment"
	"github.com/kbukum/insane/version"
)

// Hooks is implemented by every application. Embed BaseHooks to get the
// defaults and override what you need; AppName and Servers have no default.
type Hooks interface {
	// AppName identifies the application. It selects the config files
	// ({env}-{name}.yaml) and the environment variable prefix.
	AppName() string

	// AppVersion is reported by the version command and the banner.
	AppVersion() string

	// InitLogger lets the application install its own logging. Returning
	// true skips the built-in logger setup.
	InitLogger(cfg *config.AppConfig, env environment.Environment) (bool, error)

	// BeforeRun runs once before any initializer.
	BeforeRun(ctx context.Context, c *Context) error

	// Initializers returns the application-level initializers in run order.
	Initializers(ctx context.Context, c *Context) ([]Initializer, error)

	// Servers returns the units to supervise.
	Servers(ctx context.Context, c *Context) ([]Server, error)
}

// DatabaseHooks is implemented by applications that support the database
// truncate and seed commands.
type DatabaseHooks interface {
	// Truncate empties the application's tables. It runs on start when
	// database.dangerously_truncate is set.
	Truncate(ctx context.Context, db *database.DB) error

	// Seed loads initial data from path.
	Seed(ctx context.Context, db *database.DB, path string) error
}

// MigrationHooks is implemented by applications that embed their SQL
// migrations. Without it migrations are read from database.migrations_dir.
type MigrationHooks interface {
	Migrations() fs.FS
}

// BaseHooks provides the default behaviour for every optional hook.
type BaseHooks struct{}

// AppVersion returns the build version, "dev" for untagged builds.
func (BaseHooks) AppVersion() string { return version.GetShortVersion() }

// InitLogger keeps the built-in logger.
func (BaseHooks) InitLogger(*config.AppConfig, environment.Environment) (bool, error) {
	return false, nil
}

// BeforeRun does nothing.
func (BaseHooks) BeforeRun(context.Context, *Context) error { return nil }

// Initializers returns none.
func (BaseHooks) Initializers(context.Context, *Context) ([]Initializer, error) {
	return nil, nil
}
