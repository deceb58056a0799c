package doctor

import (
	"errors"
	"fmt"

	apperrors "github.com/kbukum/insane/errors"
)

// Resource identifies what a check inspects. Results print in ascending
// order, so the built-in resources come first.
type Resource int

const (
	ResourceConfig Resource = iota
	ResourceMigrateCLI
	ResourceDatabase
	ResourceRedis

	// ResourceCustom is the first value free for application checks.
	ResourceCustom Resource = 100
)

func (r Resource) String() string {
	switch r {
	case ResourceConfig:
		return "config"
	case ResourceMigrateCLI:
		return "migrate_cli"
	case ResourceDatabase:
		return "database"
	case ResourceRedis:
		return "redis"
	default:
		return fmt.Sprintf("custom_%d", int(r))
	}
}

// CheckStatus is the outcome of a check.
type CheckStatus int

const (
	StatusOk CheckStatus = iota
	StatusNotOk
	// StatusNotConfigure marks a resource the application does not use.
	StatusNotConfigure
)

func (s CheckStatus) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusNotOk:
		return "not_ok"
	default:
		return "not_configured"
	}
}

func (s CheckStatus) icon() string {
	switch s {
	case StatusOk:
		return "✅"
	case StatusNotOk:
		return "❌"
	default:
		return "⚠️ "
	}
}

// Check is the result of one diagnostic.
type Check struct {
	Status  CheckStatus
	Message string
	// Description carries details or a fix, printed on the next line.
	Description string
}

// Valid reports whether the check passed. Unconfigured resources are valid.
func (c Check) Valid() bool { return c.Status != StatusNotOk }

// Err returns nil for a valid check and a DIAGNOSTIC_FAILED error otherwise.
func (c Check) Err() error {
	if c.Valid() {
		return nil
	}
	appErr := apperrors.Diagnostic(c.Message)
	if c.Description != "" {
		appErr = appErr.WithCause(errors.New(c.Description))
	}
	return appErr
}

// String renders the check as an icon, the message and, when present, the
// description on its own line.
func (c Check) String() string {
	s := c.Status.icon() + " " + c.Message
	if c.Description != "" {
		s += "\n" + c.Description
	}
	return s
}

func ok(message string) Check { return Check{Status: StatusOk, Message: message} }

func notOk(message string, err error) Check {
	return Check{Status: StatusNotOk, Message: message, Description: err.Error()}
}

func notConfigured(message string) Check {
	return Check{Status: StatusNotConfigure, Message: message}
}
