// Package grpc runs the gRPC unit of an application, configured from the
// `grpc` section. Every server registers the standard health service and,
// when `grpc.reflection` is set, server reflection. Application services
// are added through Hooks.Register.
//
// The grpc/interceptor sub-package provides the unary and stream server
// interceptors installed on every server: panic recovery, call logging and
// mapping of application errors to status codes.
package grpc
