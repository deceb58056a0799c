package database

import (
	"context"
	"fmt"

	"github.com/kbukum/insane/component"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/util"
)

// ComponentName is the registry name of the database component.
const ComponentName = "database"

// Component wraps DB and implements component.Component.
type Component struct {
	db  *DB
	cfg Config
	log *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Component{
		cfg: cfg,
		log: log.WithComponent(ComponentName),
	}
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return ComponentName }

// Start opens the connection pool.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}
	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	name := "SQL"
	if d, err := ParseDialect(c.cfg.URI); err == nil {
		name = map[Dialect]string{Postgres: "PostgreSQL", SQLite: "SQLite"}[d]
	}
	cfg := c.cfg
	cfg.ApplyDefaults()
	details := fmt.Sprintf("%s pool=%d-%d", util.RedactURI(cfg.URI), cfg.MinConnections, cfg.MaxConnections)
	if cfg.AutoMigrate {
		details += " auto-migrate=on"
	}
	return component.Description{Name: name, Type: "database", Details: details}
}
