// Package server runs the HTTP unit of an application: a gin router served
// over HTTP/1.1 and h2c, configured from the `http` section.
//
// Applications implement Hooks to contribute routes and a final
// AfterRoutes step. Every server also exposes two built-in routes:
//
//   - /_ping: liveness, always {"ok": true}
//   - /_health: probes the database and cache of the application context
//
// # Middleware
//
// The server/middleware package provides the layers selected under
// `http.middlewares`: panic recovery, request ids, request logging, CORS,
// payload limits, request timeouts, compression and ETags.
package server
