package database

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/insane/logger"
)

func TestQueryLogger_Trace(t *testing.T) {
	stmt := func() (string, int64) { return "SELECT 1", 1 }
	tests := []struct {
		name  string
		level gormlogger.LogLevel
		took  time.Duration
		err   error
		want  string
	}{
		{"failure", gormlogger.Warn, 0, errors.New("syntax error"), "query failed"},
		{"not found is not a failure", gormlogger.Warn, 0, gorm.ErrRecordNotFound, ""},
		{"slow", gormlogger.Warn, time.Second, nil, "slow query"},
		{"fast at warn", gormlogger.Warn, 0, nil, ""},
		{"fast at info", gormlogger.Info, 0, nil, `"message":"query"`},
		{"silent", gormlogger.Silent, time.Second, errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)
			q := newQueryLogger(log, 100*time.Millisecond, tt.level)

			q.Trace(context.Background(), time.Now().Add(-tt.took), stmt, tt.err)

			out := buf.String()
			if tt.want == "" {
				if out != "" {
					t.Errorf("expected nothing logged, got %q", out)
				}
				return
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in %q", tt.want, out)
			}
		})
	}
}

func TestQueryLogger_LogMode(t *testing.T) {
	q := newQueryLogger(logger.Nop(), time.Second, gormlogger.Warn)
	silent := q.LogMode(gormlogger.Silent).(*queryLogger)
	if silent.level != gormlogger.Silent {
		t.Errorf("expected silent, got %v", silent.level)
	}
	if q.(*queryLogger).level != gormlogger.Warn {
		t.Error("expected LogMode to leave the original untouched")
	}
}
