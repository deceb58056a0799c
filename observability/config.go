package observability

import (
	"fmt"
	"time"
)

// Config configures OpenTelemetry export (the `telemetry` key).
type Config struct {
	// Enabled turns on OTLP export. When false Setup installs nothing.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling ratio between 0 and 1.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	// MetricsInterval is the metric export period, e.g. "15s".
	MetricsInterval string `yaml:"metrics_interval" mapstructure:"metrics_interval"`
}

// ApplyDefaults sets defaults for zero-valued fields. A zero sample rate is
// read as "not set" and becomes 1.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval == "" {
		c.MetricsInterval = "15s"
	}
}

// Validate checks an enabled configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("telemetry endpoint is required")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be between 0 and 1, got %v", c.SampleRate)
	}
	if _, err := time.ParseDuration(c.MetricsInterval); err != nil {
		return fmt.Errorf("invalid metrics_interval %q: %w", c.MetricsInterval, err)
	}
	return nil
}

func (c *Config) interval() time.Duration {
	d, err := time.ParseDuration(c.MetricsInterval)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}
