package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"shared-wallet-backend/internal/logger"
)

// UnaryLogging logs one line per call with its status code. Chain it after the
// auth interceptor so the client id is known.
func UnaryLogging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		clientID := clientIDFromMetadata(ctx)
		if err != nil {
			logger.WarnContext(ctx, "gRPC call failed", "method", info.FullMethod, "clientID", clientID, "code", code.String(), "duration", time.Since(start), "error", err)
		} else {
			logger.DebugContext(ctx, "gRPC call", "method", info.FullMethod, "clientID", clientID, "code", code.String(), "duration", time.Since(start))
		}
		return resp, err
	}
}

func clientIDFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if ids := md.Get(ClientIDKey); len(ids) > 0 {
		return ids[0]
	}
	return ""
}
