// Package app defines the shared application context and the contracts an
// application implements to plug into the runtime.
//
// An application provides Hooks. The runtime resolves configuration,
// builds one *Context with CreateContext and hands that same pointer to
// every hook, initializer and server:
//
//	type hooks struct{ app.BaseHooks }
//
//	func (hooks) AppName() string { return "orders" }
//
//	func (hooks) Servers(ctx context.Context, c *app.Context) ([]app.Server, error) {
//	    return []app.Server{server.New(routes{})}, nil
//	}
//
// Context is read-only after construction. Connections it owns (database,
// redis and any extra components) are released with Close.
package app
