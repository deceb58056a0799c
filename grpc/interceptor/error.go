package interceptor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/kbukum/insane/errors"
)

// ToStatus converts err into a gRPC status error. Errors that already carry
// a status pass through; an *apperrors.AppError is mapped by code; anything
// else becomes codes.Unknown.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return status.Error(codes.Unknown, err.Error())
	}
	return status.Error(codeFor(appErr.Code), appErr.Message)
}

func codeFor(code apperrors.ErrorCode) codes.Code {
	switch code {
	case apperrors.ErrCodeNotFound:
		return codes.NotFound
	case apperrors.ErrCodeInvalidInput:
		return codes.InvalidArgument
	case apperrors.ErrCodeTooLarge:
		return codes.ResourceExhausted
	case apperrors.ErrCodeTimeout:
		return codes.DeadlineExceeded
	case apperrors.ErrCodeServiceUnavailable, apperrors.ErrCodeConnectionFailed:
		return codes.Unavailable
	case apperrors.ErrCodeConfiguration:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// UnaryServerErrors maps handler errors with ToStatus.
func UnaryServerErrors() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		resp, err := handler(ctx, req)
		return resp, ToStatus(err)
	}
}

// StreamServerErrors maps stream handler errors with ToStatus.
func StreamServerErrors() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		_ *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		return ToStatus(handler(srv, ss))
	}
}
