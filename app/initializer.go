package app

import (
	"context"
	"time"

	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/observability"
)

// ServerScope identifies the server an initializer runs for. Server
// packages pass their own context, which carries the server configuration.
type ServerScope interface {
	ServerName() string
}

// Initializer is a named one-time setup step. scope is nil for
// application-level initializers and set for per-server ones.
type Initializer interface {
	Name() string
	BeforeRun(ctx context.Context, c *Context, scope ServerScope) error
}

// Server is a long-running unit supervised by the runtime.
type Server interface {
	Name() string
	// Enable decides, from the context, whether the unit runs at all.
	Enable(ctx context.Context, c *Context) (bool, error)
	// Serve blocks until ctx is cancelled or the unit fails.
	Serve(ctx context.Context, c *Context) error
}

// ServerLifecycle is optionally implemented by servers with their own
// setup phase, run at the start of Serve.
type ServerLifecycle interface {
	BeforeServe(ctx context.Context, c *Context, scope ServerScope) error
	ServerInitializers(ctx context.Context, c *Context, scope ServerScope) ([]Initializer, error)
}

type initializerFunc struct {
	name string
	fn   func(ctx context.Context, c *Context, scope ServerScope) error
}

// NewInitializer adapts a function to Initializer.
func NewInitializer(name string, fn func(ctx context.Context, c *Context, scope ServerScope) error) Initializer {
	return initializerFunc{name: name, fn: fn}
}

func (i initializerFunc) Name() string { return i.name }

func (i initializerFunc) BeforeRun(ctx context.Context, c *Context, scope ServerScope) error {
	return i.fn(ctx, c, scope)
}

// RunInitializers runs list strictly in order and stops at the first
// failure, which is returned as an EXTENSION_FAILED error carrying the
// zero-based index and name of the initializer.
func RunInitializers(ctx context.Context, c *Context, scope ServerScope, list []Initializer) error {
	log := logger.WithComponent("initializers")
	if scope != nil {
		log = log.WithFields(logger.Fields(logger.FieldServer, scope.ServerName()))
	}

	for i, step := range list {
		name := step.Name()
		spanCtx, span := observability.StartSpan(ctx, observability.SpanInitializer)
		observability.SetSpanAttribute(spanCtx, observability.AttrInitializer, name)

		start := time.Now()
		err := step.BeforeRun(spanCtx, c, scope)
		if err != nil {
			observability.SetSpanError(spanCtx, err)
		}
		span.End()

		if err != nil {
			log.Error("initializer failed", logger.Fields(
				logger.FieldInitializer, name,
				logger.FieldError, err.Error(),
			))
			return apperrors.InitializerFailed(i, name).WithCause(err)
		}
		log.Debug("initializer done", logger.Fields(
			logger.FieldInitializer, name,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
	}
	return nil
}

// RunServerLifecycle runs a server's before-serve hook and then its
// per-server initializers.
func RunServerLifecycle(ctx context.Context, c *Context, scope ServerScope, l ServerLifecycle) error {
	if err := l.BeforeServe(ctx, c, scope); err != nil {
		return apperrors.Extension(scope.ServerName() + " before_serve").WithCause(err)
	}
	list, err := l.ServerInitializers(ctx, c, scope)
	if err != nil {
		return apperrors.Extension(scope.ServerName() + " initializers").WithCause(err)
	}
	return RunInitializers(ctx, c, scope, list)
}
