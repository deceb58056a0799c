package grpc

import "github.com/kbukum/insane/app"

// Context is the server-scoped context handed to Register and per-server
// initializers.
type Context struct {
	Config Config
	App    *app.Context

	name string
}

// ServerName implements app.ServerScope.
func (c *Context) ServerName() string { return c.name }
