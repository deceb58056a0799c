package config

import (
	"fmt"

	"github.com/kbukum/insane/database"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/observability"
	"github.com/kbukum/insane/redis"
)

// AppConfig is the configuration tree every application gets. Sections owned
// by servers or by the application itself live next to it in the same files
// and are read with LoadKey.
type AppConfig struct {
	ApplicationName string               `yaml:"application_name" mapstructure:"application_name"`
	Logger          logger.Config        `yaml:"logger" mapstructure:"logger"`
	Database        database.Config      `yaml:"database" mapstructure:"database"`
	Redis           redis.Config         `yaml:"redis" mapstructure:"redis"`
	Telemetry       observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills every section with its defaults.
func (c *AppConfig) ApplyDefaults() {
	c.Logger.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}
