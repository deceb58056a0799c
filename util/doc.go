// Package util parses human sizes and redacts credentials from connection
// URIs before they reach the logs.
package util
