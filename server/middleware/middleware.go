package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/insane/logger"
)

// Middleware wraps an http.Handler with additional behavior. The stack is
// applied around the whole router, so it covers every route including the
// built-in ones.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// Build assembles the layers enabled in cfg, outermost first: panic
// recovery, request id, request logging, CORS, payload limit, request
// timeout, compression, ETag.
func Build(cfg Config, log *logger.Logger) Middleware {
	var stack []Middleware
	if cfg.CatchPanic.Enable {
		stack = append(stack, Recovery(log))
	}
	if cfg.RequestID.Enable {
		stack = append(stack, RequestID())
	}
	if cfg.Logger.Enable {
		stack = append(stack, RequestLogger(log))
	}
	if cfg.CORS.Enable {
		stack = append(stack, CORS(&cfg.CORS))
	}
	if cfg.LimitPayload.Enable {
		stack = append(stack, BodySizeLimit(cfg.LimitPayload.BodyLimit))
	}
	if cfg.TimeoutRequest.Enable {
		d, err := time.ParseDuration(cfg.TimeoutRequest.Timeout)
		if err == nil && d > 0 {
			stack = append(stack, Timeout(d))
		}
	}
	if cfg.Compression.Enable {
		stack = append(stack, Compress())
	}
	if cfg.ETag.Enable {
		stack = append(stack, ETag())
	}
	return Chain(stack...)
}
