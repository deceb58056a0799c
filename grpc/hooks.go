package grpc

import gogrpc "google.golang.org/grpc"

// Hooks is what an application provides to run a gRPC server. Like the HTTP
// hooks it may also implement app.ServerLifecycle.
type Hooks interface {
	// Register adds the application services. The health service, and
	// reflection when enabled, are already registered.
	Register(srv *gogrpc.Server, sc *Context) error
}

// RegisterFunc adapts a function to Hooks.
type RegisterFunc func(srv *gogrpc.Server, sc *Context) error

// Register calls f.
func (f RegisterFunc) Register(srv *gogrpc.Server, sc *Context) error { return f(srv, sc) }
