package errors

import stderrors "errors"

// Response is the JSON body written for a failed request:
//
//	{"error": {"code": "NOT_FOUND", "message": "...", "retryable": false}}
type Response struct {
	Error Body `json:"error"`
}

// Body is the error object inside a Response.
type Body struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse renders e for clients. The cause is never exposed.
func (e *AppError) ToResponse() Response {
	return Response{Error: Body{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// From returns the *AppError in err's chain or wraps err as an internal
// error. A nil err returns nil.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
