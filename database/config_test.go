package database

import (
	"strings"
	"testing"
)

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.MaxConnections != 10 {
		t.Errorf("expected max_connections 10, got %d", cfg.MaxConnections)
	}
	if cfg.MinConnections != 1 {
		t.Errorf("expected min_connections 1, got %d", cfg.MinConnections)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected max_retries 3, got %d", cfg.MaxRetries)
	}
	if cfg.MigrationsDir != "migrations" {
		t.Errorf("expected migrations_dir 'migrations', got %q", cfg.MigrationsDir)
	}
	if cfg.Configured() {
		t.Error("expected defaults not to configure a database")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		c := Config{URI: "sqlite://app.db"}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid sqlite", func(c *Config) {}, ""},
		{"valid postgres", func(c *Config) { c.URI = "postgres://u:p@localhost/app" }, ""},
		{"unconfigured skips checks", func(c *Config) { c.URI = ""; c.ConnectTimeout = "nope" }, ""},
		{"unknown scheme", func(c *Config) { c.URI = "mysql://localhost/app" }, "unsupported database scheme"},
		{"no scheme", func(c *Config) { c.URI = "app.db" }, "has no scheme"},
		{"min above max", func(c *Config) { c.MinConnections = 20 }, "min_connections"},
		{"bad duration", func(c *Config) { c.IdleTimeout = "ten minutes" }, "idle_timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		uri  string
		want Dialect
	}{
		{"postgres://localhost/app", Postgres},
		{"postgresql://localhost/app", Postgres},
		{"sqlite://./app.db", SQLite},
		{"sqlite3://:memory:", SQLite},
	}
	for _, tc := range tests {
		got, err := ParseDialect(tc.uri)
		if err != nil {
			t.Errorf("ParseDialect(%q) unexpected error: %v", tc.uri, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDialect(%q) = %q, want %q", tc.uri, got, tc.want)
		}
	}
}

func TestSqlitePath(t *testing.T) {
	if got := sqlitePath("sqlite://./data/app.db"); got != "./data/app.db" {
		t.Errorf("unexpected path %q", got)
	}
}
