package app

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/kbukum/insane/component"
	"github.com/kbukum/insane/config"
	"github.com/kbukum/insane/database"
	"github.com/kbukum/insane/environment"
	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/redis"
)

// Context is the application-wide state shared by every hook and server.
// It is built once by CreateContext and never mutated afterwards.
type Context struct {
	env        environment.Environment
	cfg        config.AppConfig
	loader     *config.Loader
	db         *database.DB
	redis      *redis.Client
	components *component.Registry
	log        *logger.Logger
}

// Option configures CreateContext.
type Option func(*options)

type options struct {
	loader *config.Loader
	log    *logger.Logger
	extra  []component.Component
}

// WithLoader sets the loader servers use to read their own config sections.
// Without it a default loader over .config is used.
func WithLoader(l *config.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithLogger sets the logger used for connection setup.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithComponent registers an extra component. It is started after the
// database and redis and stopped before them.
func WithComponent(c component.Component) Option {
	return func(o *options) { o.extra = append(o.extra, c) }
}

// CreateContext opens the connections the configuration asks for and
// returns the shared context. A database is opened only when database.uri
// is set and redis only when redis.uri is set. If any connection fails the
// ones already opened are closed and a CONNECTION_FAILED error is returned.
func CreateContext(ctx context.Context, env environment.Environment, cfg *config.AppConfig, opts ...Option) (*Context, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("context")
	}
	if o.loader == nil {
		o.loader = config.NewLoader()
	}

	if cfg.Logger.PrettyBacktrace {
		debug.SetTraceback("all")
		o.log.Warn("pretty backtraces are enabled (this is great for development but has a runtime cost " +
			"for production. disable with `logger.pretty_backtrace` in your config yaml)")
	}

	c := &Context{
		env:        env,
		cfg:        *cfg,
		loader:     o.loader,
		components: component.NewRegistry(o.log.WithComponent("components")),
		log:        o.log,
	}

	var (
		dbComp    *database.Component
		redisComp *redis.Component
		names     []string
	)
	if cfg.Database.Configured() {
		dbComp = database.NewComponent(cfg.Database, o.log)
		names = append(names, database.ComponentName)
		if err := c.components.Register(dbComp); err != nil {
			return nil, apperrors.Connection(database.ComponentName).WithCause(err)
		}
	}
	if cfg.Redis.Configured() {
		redisComp = redis.NewComponent(cfg.Redis, o.log)
		names = append(names, redis.ComponentName)
		if err := c.components.Register(redisComp); err != nil {
			return nil, apperrors.Connection(redis.ComponentName).WithCause(err)
		}
	}
	for _, extra := range o.extra {
		names = append(names, extra.Name())
		if err := c.components.Register(extra); err != nil {
			return nil, apperrors.Connection(extra.Name()).WithCause(err)
		}
	}

	if err := c.components.StartAll(ctx); err != nil {
		name := "components"
		var startErr *component.StartError
		if errors.As(err, &startErr) {
			name = startErr.Component
		}
		return nil, apperrors.Connection(name).WithCause(err)
	}

	if dbComp != nil {
		c.db = dbComp.DB()
	}
	if redisComp != nil {
		c.redis = redisComp.Client()
	}

	c.log.Debug("application context created", logger.Fields(
		logger.FieldEnvironment, env.String(),
		"components", names,
	))
	return c, nil
}

// Environment returns the resolved environment.
func (c *Context) Environment() environment.Environment { return c.env }

// Config returns a copy of the resolved configuration.
func (c *Context) Config() config.AppConfig { return c.cfg }

// Loader returns the configuration loader, for servers reading their own
// sections with config.LoadKey.
func (c *Context) Loader() *config.Loader { return c.loader }

// DB returns the database connection, or nil when none is configured.
func (c *Context) DB() *database.DB { return c.db }

// Redis returns the redis client, or nil when none is configured.
func (c *Context) Redis() *redis.Client { return c.redis }

// Health reports the health of every connection the context owns.
func (c *Context) Health(ctx context.Context) []component.Health {
	return c.components.HealthAll(ctx)
}

// Components returns the registry holding the context's connections.
func (c *Context) Components() *component.Registry { return c.components }

// Close releases every connection in reverse order of opening.
func (c *Context) Close(ctx context.Context) error {
	return c.components.StopAll(ctx)
}
