package middleware

import (
	"fmt"
	"time"

	"github.com/kbukum/insane/util"
)

// Config selects the middleware installed in front of the router (the
// `http.middlewares` key). Every layer is off unless enabled.
type Config struct {
	Compression    Toggle         `yaml:"compression" mapstructure:"compression"`
	ETag           Toggle         `yaml:"etag" mapstructure:"etag"`
	LimitPayload   LimitPayload   `yaml:"limit_payload" mapstructure:"limit_payload"`
	Logger         Toggle         `yaml:"logger" mapstructure:"logger"`
	CatchPanic     Toggle         `yaml:"catch_panic" mapstructure:"catch_panic"`
	TimeoutRequest TimeoutRequest `yaml:"timeout_request" mapstructure:"timeout_request"`
	CORS           CORSConfig     `yaml:"cors" mapstructure:"cors"`
	RequestID      Toggle         `yaml:"request_id" mapstructure:"request_id"`
}

// Toggle is a layer with no settings.
type Toggle struct {
	Enable bool `yaml:"enable" mapstructure:"enable"`
}

// LimitPayload caps request bodies. BodyLimit accepts sizes such as "2MB".
type LimitPayload struct {
	Enable    bool   `yaml:"enable" mapstructure:"enable"`
	BodyLimit string `yaml:"body_limit" mapstructure:"body_limit"`
}

// TimeoutRequest bounds how long a handler may run.
type TimeoutRequest struct {
	Enable  bool   `yaml:"enable" mapstructure:"enable"`
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
}

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	Enable           bool     `yaml:"enable" mapstructure:"enable"`
	AllowOrigins     []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	AllowMethods     []string `yaml:"allow_methods" mapstructure:"allow_methods"`
	AllowHeaders     []string `yaml:"allow_headers" mapstructure:"allow_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	// MaxAge is how long browsers may cache a preflight answer.
	MaxAge string `yaml:"max_age" mapstructure:"max_age"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.LimitPayload.BodyLimit == "" {
		c.LimitPayload.BodyLimit = "2MB"
	}
	if c.TimeoutRequest.Timeout == "" {
		c.TimeoutRequest.Timeout = "30s"
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}
	if len(c.CORS.AllowMethods) == 0 {
		c.CORS.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowHeaders) == 0 {
		c.CORS.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	}
	if c.CORS.MaxAge == "" {
		c.CORS.MaxAge = "1h"
	}
}

// Validate checks the durations of enabled layers.
func (c *Config) Validate() error {
	if c.TimeoutRequest.Enable {
		d, err := time.ParseDuration(c.TimeoutRequest.Timeout)
		if err != nil {
			return fmt.Errorf("timeout_request.timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout_request.timeout must be positive (got: %s)", c.TimeoutRequest.Timeout)
		}
	}
	if c.LimitPayload.Enable {
		if _, err := util.ParseBytes(c.LimitPayload.BodyLimit); err != nil {
			return fmt.Errorf("limit_payload.body_limit: %w", err)
		}
	}
	if c.CORS.Enable && c.CORS.MaxAge != "" {
		if _, err := time.ParseDuration(c.CORS.MaxAge); err != nil {
			return fmt.Errorf("cors.max_age: %w", err)
		}
	}
	return nil
}
