package middleware

import (
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Timeout cancels the request context after d. Handlers that return after
// the deadline get a 504 written on their behalf.
func Timeout(d time.Duration) Middleware {
	return chimw.Timeout(d)
}

// Compress gzip/deflate-encodes responses when the client accepts it.
func Compress() Middleware {
	return chimw.Compress(compressionLevel)
}

const compressionLevel = 5
