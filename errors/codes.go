package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Bootstrap errors, one per failing stage of an application run.
const (
	// ErrCodeConfiguration indicates the configuration could not be resolved.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeConnectionFailed indicates a failed connection to a backing service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeExtension indicates an application hook or initializer failed.
	ErrCodeExtension ErrorCode = "EXTENSION_FAILED"
	// ErrCodeServer indicates a supervised server returned an error.
	ErrCodeServer ErrorCode = "SERVER_FAILED"
	// ErrCodeDiagnostic indicates a doctor check could not be evaluated.
	ErrCodeDiagnostic ErrorCode = "DIAGNOSTIC_FAILED"
)

// Availability errors (retryable)
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
)

// Request errors
const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeTooLarge     ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Internal errors
const (
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeDatabaseError:      true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
