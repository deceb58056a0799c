package database

import (
	"fmt"
	"time"
)

// Config holds database connection configuration (the `database` key).
// Durations are Go duration strings such as "500ms" or "30m".
type Config struct {
	// URI selects the dialect and target database. Empty means no database.
	URI string `yaml:"uri" mapstructure:"uri"`

	// EnableLogging logs every statement at debug level.
	EnableLogging bool `yaml:"enable_logging" mapstructure:"enable_logging"`

	MinConnections int `yaml:"min_connections" mapstructure:"min_connections" validate:"gte=0"`
	MaxConnections int `yaml:"max_connections" mapstructure:"max_connections" validate:"gte=1"`

	ConnectTimeout string `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	IdleTimeout    string `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxLifetime    string `yaml:"max_lifetime" mapstructure:"max_lifetime"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=1"`

	// SlowQueryThreshold is the duration above which queries are logged as slow.
	SlowQueryThreshold string `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`

	// AutoMigrate applies pending migrations when the application starts.
	AutoMigrate bool `yaml:"auto_migrate" mapstructure:"auto_migrate"`
	// DangerouslyTruncate calls the application's Truncate hook on start.
	DangerouslyTruncate bool `yaml:"dangerously_truncate" mapstructure:"dangerously_truncate"`
	// DangerouslyRecreate drops the schema and re-applies every migration on start.
	DangerouslyRecreate bool `yaml:"dangerously_recreate" mapstructure:"dangerously_recreate"`

	// MigrationsDir is read when the application does not embed its migrations.
	MigrationsDir string `yaml:"migrations_dir" mapstructure:"migrations_dir"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10
	}
	if c.MinConnections <= 0 {
		c.MinConnections = 1
	}
	if c.ConnectTimeout == "" {
		c.ConnectTimeout = "5s"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "10m"
	}
	if c.MaxLifetime == "" {
		c.MaxLifetime = "30m"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = "migrations"
	}
}

// Configured reports whether a database URI is set.
func (c *Config) Configured() bool { return c.URI != "" }

// Validate checks a configured database. An unconfigured one is always valid.
func (c *Config) Validate() error {
	if !c.Configured() {
		return nil
	}
	if _, err := ParseDialect(c.URI); err != nil {
		return err
	}
	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("min_connections (%d) must be <= max_connections (%d)", c.MinConnections, c.MaxConnections)
	}
	for name, value := range map[string]string{
		"connect_timeout":      c.ConnectTimeout,
		"idle_timeout":         c.IdleTimeout,
		"max_lifetime":         c.MaxLifetime,
		"slow_query_threshold": c.SlowQueryThreshold,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}
	return nil
}

// duration parses a validated duration field, falling back to def.
func duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
