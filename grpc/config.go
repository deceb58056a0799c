package grpc

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// ConfigKey is the configuration section read by the gRPC server.
const ConfigKey = "grpc"

// KeepaliveConfig holds keepalive settings for accepted connections.
type KeepaliveConfig struct {
	// Time is the idle interval after which the server pings the client.
	Time string `yaml:"time" mapstructure:"time"`
	// Timeout is the time to wait for a keepalive ping ack before closing.
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
	// MinTime is the shortest ping interval a client may use.
	MinTime string `yaml:"min_time" mapstructure:"min_time"`
	// PermitWithoutStream allows client pings when there are no active RPCs.
	PermitWithoutStream bool `yaml:"permit_without_stream" mapstructure:"permit_without_stream"`
}

// Config holds gRPC server configuration (the `grpc` key).
type Config struct {
	Enable  bool   `yaml:"enable" mapstructure:"enable"`
	Binding string `yaml:"binding" mapstructure:"binding"`
	Port    int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	// MaxRecvMsgSize is the largest message the server accepts (bytes).
	MaxRecvMsgSize int `yaml:"max_recv_msg_size" mapstructure:"max_recv_msg_size" validate:"gt=0"`
	// MaxSendMsgSize is the largest message the server sends (bytes).
	MaxSendMsgSize int `yaml:"max_send_msg_size" mapstructure:"max_send_msg_size" validate:"gt=0"`
	// Reflection registers the server reflection service.
	Reflection bool `yaml:"reflection" mapstructure:"reflection"`
	// ShutdownTimeout bounds GracefulStop before in-flight RPCs are cut.
	ShutdownTimeout string          `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	Keepalive       KeepaliveConfig `yaml:"keepalive" mapstructure:"keepalive"`
}

const (
	defaultPort           = 50051
	defaultMaxRecvMsgSize = 4 * 1024 * 1024
	defaultMaxSendMsgSize = 4 * 1024 * 1024
)

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Binding == "" {
		c.Binding = "[::]"
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.MaxRecvMsgSize == 0 {
		c.MaxRecvMsgSize = defaultMaxRecvMsgSize
	}
	if c.MaxSendMsgSize == 0 {
		c.MaxSendMsgSize = defaultMaxSendMsgSize
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "10s"
	}
	if c.Keepalive.Time == "" {
		c.Keepalive.Time = "2h"
	}
	if c.Keepalive.Timeout == "" {
		c.Keepalive.Timeout = "20s"
	}
	if c.Keepalive.MinTime == "" {
		c.Keepalive.MinTime = "5m"
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Binding == "" {
		return fmt.Errorf("grpc: binding must not be empty")
	}
	for key, v := range map[string]string{
		"shutdown_timeout":   c.ShutdownTimeout,
		"keepalive.time":     c.Keepalive.Time,
		"keepalive.timeout":  c.Keepalive.Timeout,
		"keepalive.min_time": c.Keepalive.MinTime,
	} {
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return fmt.Errorf("grpc: %s must be a non-negative duration (got: %q)", key, v)
		}
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	host := strings.TrimSuffix(strings.TrimPrefix(c.Binding, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

func duration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}
