package util

import (
	"net/url"
	"slices"
	"strings"
)

const redacted = "xxxxx"

// secretParams are query parameters drivers accept credentials in.
var secretParams = []string{"password", "passwd", "pwd", "secret", "sslpassword", "token"}

// MaskSecret keeps the first visiblePrefix bytes of s and masks the rest.
// Strings no longer than the prefix are masked entirely.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// RedactURI hides the password of a connection URI, in the user info or in
// a credential query parameter, so the URI can be logged. Strings that do not
// parse as URIs are masked entirely.
func RedactURI(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return MaskSecret(raw, 0)
	}
	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for k := range q {
			if slices.Contains(secretParams, strings.ToLower(k)) {
				q.Set(k, redacted)
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	return u.Redacted()
}
