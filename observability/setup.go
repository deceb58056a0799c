package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/insane/logger"
)

// ShutdownFunc flushes and stops the telemetry providers.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs OTLP/HTTP trace and metric providers as the otel globals
// when cfg.Enabled is set. When disabled the globals stay no-op and the
// returned shutdown does nothing.
func Setup(ctx context.Context, cfg Config, service, version, env string) (ShutdownFunc, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled {
		return noopShutdown, nil
	}
	if err := cfg.Validate(); err != nil {
		return noopShutdown, err
	}

	res, err := newResource(service, version, env)
	if err != nil {
		return noopShutdown, fmt.Errorf("creating resource: %w", err)
	}

	tp, err := initTracer(ctx, cfg, res)
	if err != nil {
		return noopShutdown, err
	}
	mp, err := initMeter(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return noopShutdown, err
	}

	logger.Info("telemetry initialized", logger.Fields(
		"service", service,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
		"metrics_interval", cfg.interval().String(),
	))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
