package server

import "github.com/kbukum/insane/app"

// Context is the server-scoped context handed to route hooks and per-server
// initializers.
type Context struct {
	// Config is the resolved `http` section.
	Config Config
	// App is the shared application context.
	App *app.Context

	name string
}

// ServerName implements app.ServerScope.
func (c *Context) ServerName() string { return c.name }

var _ app.ServerScope = (*Context)(nil)
