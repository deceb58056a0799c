package logger

import (
	"fmt"
	"slices"
	"strings"
)

// Output formats.
const (
	FormatStandard = "standard"
	FormatJSON     = "json"
	FormatPretty   = "pretty"
)

// Config contains logging configuration (the `logger` config key).
type Config struct {
	Level   string `yaml:"level" mapstructure:"level"`
	Format  string `yaml:"format" mapstructure:"format"`
	Output  string `yaml:"output" mapstructure:"output"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
	Caller  bool   `yaml:"caller" mapstructure:"caller"`
	// PrettyBacktrace dumps every goroutine on a crash.
	PrettyBacktrace bool `yaml:"pretty_backtrace" mapstructure:"pretty_backtrace"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatStandard
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if !slices.Contains(validLevels, strings.ToLower(c.Level)) {
		return fmt.Errorf("logger.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{FormatStandard, FormatJSON, FormatPretty, "console", "text"}
	if !slices.Contains(validFormats, strings.ToLower(c.Format)) {
		return fmt.Errorf("logger.format must be one of [standard json pretty] (got: %s)", c.Format)
	}
	return nil
}

// normalizedFormat folds the console/text aliases into standard.
func (c *Config) normalizedFormat() string {
	switch f := strings.ToLower(c.Format); f {
	case "console", "text", "":
		return FormatStandard
	default:
		return f
	}
}
