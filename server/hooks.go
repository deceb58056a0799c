package server

import "github.com/gin-gonic/gin"

// Hooks is what an application provides to run an HTTP server. A Hooks
// value may also implement app.ServerLifecycle to get a before-serve step
// and per-server initializers.
type Hooks interface {
	// Routes returns the application routes. nil mounts nothing.
	Routes(sc *Context) *Routes
	// AfterRoutes runs once, after every route is mounted and before the
	// listener is bound.
	AfterRoutes(engine *gin.Engine, sc *Context) error
}

// BaseHooks provides a no-op AfterRoutes for embedding.
type BaseHooks struct{}

// AfterRoutes does nothing.
func (BaseHooks) AfterRoutes(*gin.Engine, *Context) error { return nil }
