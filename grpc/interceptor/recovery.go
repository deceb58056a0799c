package interceptor

import (
	"context"
	"fmt"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kbukum/insane/logger"
)

// UnaryServerRecovery turns a handler panic into codes.Internal.
func UnaryServerRecovery(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = recovered(log, info.FullMethod, rec)
			}
		}()
		return handler(ctx, req)
	}
}

// StreamServerRecovery turns a stream handler panic into codes.Internal.
func StreamServerRecovery(log *logger.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = recovered(log, info.FullMethod, rec)
			}
		}()
		return handler(srv, ss)
	}
}

func recovered(log *logger.Logger, method string, rec interface{}) error {
	log.Error("Panic recovered", map[string]interface{}{
		"error":  fmt.Sprintf("%v", rec),
		"method": method,
		"stack":  string(debug.Stack()),
	})
	return status.Error(codes.Internal, "internal error")
}
