package middleware

import (
	"net/http"

	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/util"
)

const defaultMaxBodySize = 2 * 1024 * 1024

// BodySizeLimit returns middleware that restricts the request body to the given
// size string (e.g. "2MB", "512KB"). Requests that declare a larger
// Content-Length are rejected with 413 before the handler runs.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				writeError(w, apperrors.PayloadTooLarge(size))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
