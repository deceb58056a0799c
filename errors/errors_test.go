package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestBootstrapConstructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		detailKey string
		detail    any
	}{
		{"configuration", Configuration("bad yaml"), ErrCodeConfiguration, "", nil},
		{"connection", Connection("database"), ErrCodeConnectionFailed, "service", "database"},
		{"extension", Extension("before_run"), ErrCodeExtension, "hook", "before_run"},
		{"initializer", InitializerFailed(2, "seed"), ErrCodeExtension, "initializer", "seed"},
		{"server", Server("http_server"), ErrCodeServer, "server", "http_server"},
		{"diagnostic", Diagnostic("redis"), ErrCodeDiagnostic, "check", "redis"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.detailKey != "" && tc.err.Details[tc.detailKey] != tc.detail {
				t.Errorf("expected %s=%v, got %v", tc.detailKey, tc.detail, tc.err.Details[tc.detailKey])
			}
		})
	}
}

func TestInitializerFailed_Message(t *testing.T) {
	err := InitializerFailed(1, "cache-warmup")
	if !strings.Contains(err.Message, "#1") || !strings.Contains(err.Message, "cache-warmup") {
		t.Errorf("expected message to name index and initializer, got %q", err.Message)
	}
	if err.Details["index"] != 1 {
		t.Errorf("expected index=1, got %v", err.Details["index"])
	}
}

func TestConnection_IsRetryable(t *testing.T) {
	if !Connection("redis").Retryable {
		t.Error("connection errors should be retryable")
	}
	if Configuration("x").Retryable {
		t.Error("configuration errors should not be retryable")
	}
}

func TestIs(t *testing.T) {
	base := Configuration("missing field").WithCause(fmt.Errorf("decode"))
	wrapped := fmt.Errorf("load: %w", base)

	if !Is(wrapped, ErrCodeConfiguration) {
		t.Error("expected wrapped error to match CONFIGURATION_ERROR")
	}
	if Is(wrapped, ErrCodeServer) {
		t.Error("expected wrapped error not to match SERVER_FAILED")
	}
	if Is(fmt.Errorf("plain"), ErrCodeConfiguration) {
		t.Error("expected plain error not to match")
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("user", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
	err = NotFound("user", "123")
	if err.Details["id"] != "123" {
		t.Errorf("expected id=123, got %v", err.Details["id"])
	}
}

func TestAppError_Internal_Success(t *testing.T) {
	cause := fmt.Errorf("db connection lost")
	err := Internal(cause)
	if err.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.HTTPStatus)
	}
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
}

func TestPayloadTooLarge(t *testing.T) {
	err := PayloadTooLarge(1024)
	if err.HTTPStatus != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", err.HTTPStatus)
	}
	if err.Details["limit"] != int64(1024) {
		t.Errorf("expected limit=1024, got %v", err.Details["limit"])
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := Validation("bad").WithDetails(map[string]any{"a": 1}).WithDetail("b", 2)
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("expected merged details, got %v", err.Details)
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := Server("grpc_server")
	if err.Error() != "SERVER_FAILED: server grpc_server failed" {
		t.Errorf("unexpected format %q", err.Error())
	}
	err.WithCause(fmt.Errorf("bind: address in use"))
	if !strings.Contains(err.Error(), "(cause: bind: address in use)") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("root")
	err := Extension("servers").WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestErrorCode_IsRetryableCode_Table(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeServiceUnavailable, true},
		{ErrCodeConnectionFailed, true},
		{ErrCodeTimeout, true},
		{ErrCodeDatabaseError, true},
		{ErrCodeConfiguration, false},
		{ErrCodeExtension, false},
		{ErrCodeInternal, false},
	}
	for _, tc := range tests {
		if got := IsRetryableCode(tc.code); got != tc.want {
			t.Errorf("IsRetryableCode(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	resp := InvalidInput("email", "must not be empty").ToResponse()
	if resp.Error.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "email" {
		t.Errorf("expected field=email, got %v", resp.Error.Details["field"])
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Timeout("query"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed")
	}
	if appErr.Code != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", appErr.Code)
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected plain error not to convert")
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("expected nil for nil")
	}
	wrapped := fmt.Errorf("outer: %w", NotFound("user", "42"))
	if got := From(wrapped); got.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", got.Code)
	}
	got := From(fmt.Errorf("disk on fire"))
	if got.Code != ErrCodeInternal || got.HTTPStatus != 500 {
		t.Errorf("expected internal 500, got %s %d", got.Code, got.HTTPStatus)
	}
}
