package interceptor

import (
	"context"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/kbukum/insane/logger"
)

// UnaryServerLogging logs each handled RPC with method, duration and status.
func UnaryServerLogging(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(log, "gRPC call", info.FullMethod, time.Since(start), err)
		return resp, err
	}
}

// StreamServerLogging logs each handled stream once it ends.
func StreamServerLogging(log *logger.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(log, "gRPC stream", info.FullMethod, time.Since(start), err)
		return err
	}
}

func logCall(log *logger.Logger, kind, fullMethod string, d time.Duration, err error) {
	fields := map[string]interface{}{
		"service":     path.Dir(fullMethod)[1:],
		"method":      path.Base(fullMethod),
		"duration_ms": d.Milliseconds(),
	}
	if err != nil {
		st := status.Convert(err)
		fields["status"] = st.Code().String()
		fields["error"] = st.Message()
		log.Error(kind+" failed", fields)
		return
	}
	fields["status"] = "OK"
	log.Debug(kind+" completed", fields)
}
