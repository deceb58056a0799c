// Package logger provides structured logging built on zerolog.
//
// Three formats are supported: standard (single-line console output), pretty
// (console output with one field per line and caller information) and json.
//
// # Configuration
//
//	logger:
//	  level: "info"
//	  format: "standard"
//	  pretty_backtrace: false
//
// # Usage
//
//	log := logger.WithComponent("supervisor")
//	log.Info("server stopped", logger.Fields("server", name))
package logger
