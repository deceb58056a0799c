package redis

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration (the `redis` key).
type Config struct {
	// URI is a redis:// or rediss:// URL. Empty means no Redis.
	URI string `yaml:"uri" mapstructure:"uri"`

	// PoolSize is the maximum number of socket connections.
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=1"`

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int `yaml:"min_idle_conns" mapstructure:"min_idle_conns" validate:"gte=0"`

	DialTimeout  string `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  string `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
}

// Configured reports whether a Redis URI is set.
func (c *Config) Configured() bool { return c.URI != "" }

// Validate checks a configured Redis. An unconfigured one is always valid.
func (c *Config) Validate() error {
	if !c.Configured() {
		return nil
	}
	if _, err := goredis.ParseURL(c.URI); err != nil {
		return fmt.Errorf("invalid redis uri: %w", err)
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be > 0")
	}
	if _, err := time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf("invalid dial_timeout %q: %w", c.DialTimeout, err)
	}
	if _, err := time.ParseDuration(c.ReadTimeout); err != nil {
		return fmt.Errorf("invalid read_timeout %q: %w", c.ReadTimeout, err)
	}
	if _, err := time.ParseDuration(c.WriteTimeout); err != nil {
		return fmt.Errorf("invalid write_timeout %q: %w", c.WriteTimeout, err)
	}
	return nil
}

// options turns the configuration into go-redis options. Settings in the
// URI query win over the pool fields.
func (c Config) options() (*goredis.Options, error) {
	opts, err := goredis.ParseURL(c.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid redis uri: %w", err)
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = c.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = c.MinIdleConns
	}
	if d, err := time.ParseDuration(c.DialTimeout); err == nil && opts.DialTimeout == 0 {
		opts.DialTimeout = d
	}
	if d, err := time.ParseDuration(c.ReadTimeout); err == nil && opts.ReadTimeout == 0 {
		opts.ReadTimeout = d
	}
	if d, err := time.ParseDuration(c.WriteTimeout); err == nil && opts.WriteTimeout == 0 {
		opts.WriteTimeout = d
	}
	return opts, nil
}
