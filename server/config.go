package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/insane/server/middleware"
)

// ConfigKey is the configuration section read by the HTTP server.
const ConfigKey = "http"

// Config holds HTTP server configuration (the `http` key). Durations are Go
// duration strings.
type Config struct {
	Enable  bool   `yaml:"enable" mapstructure:"enable"`
	Binding string `yaml:"binding" mapstructure:"binding"`
	Port    int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`

	ReadTimeout     string `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     string `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	Middlewares middleware.Config `yaml:"middlewares" mapstructure:"middlewares"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Binding == "" {
		c.Binding = "[::]"
	}
	if c.Port == 0 {
		c.Port = 8089
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "15s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "60s"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "120s"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "10s"
	}
	c.Middlewares.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Binding == "" {
		return fmt.Errorf("http.binding is required")
	}
	for key, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"idle_timeout":     c.IdleTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("http.%s: %w", key, err)
		}
		if d < 0 {
			return fmt.Errorf("http.%s must be non-negative (got: %s)", key, v)
		}
	}
	if err := c.Middlewares.Validate(); err != nil {
		return fmt.Errorf("http.middlewares.%w", err)
	}
	return nil
}

// Addr returns the listen address. Bracketed IPv6 bindings such as "[::]"
// are accepted.
func (c *Config) Addr() string {
	host := strings.TrimSuffix(strings.TrimPrefix(c.Binding, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

func duration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}
