// Package errors provides the error taxonomy shared by the bootstrap runtime
// and the services built on it.
//
// Bootstrap stages fail with a dedicated code (CONFIGURATION_ERROR,
// CONNECTION_FAILED, EXTENSION_FAILED, SERVER_FAILED, DIAGNOSTIC_FAILED).
// Request handlers use the request codes, which carry an HTTP status and
// render as RFC 7807 style bodies through ToResponse.
package errors
