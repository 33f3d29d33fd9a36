// Package grpc hosts the read-only wallet service next to the standard health
// service and server reflection, behind the token interceptors.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"shared-wallet-backend/internal/api/grpc/interceptor"
	"shared-wallet-backend/internal/security"
	"shared-wallet-backend/internal/service"
)

type Server struct {
	*grpc.Server
	health *health.Server
}

func NewServer(tm security.TokenManager, wallets service.WalletService, notifications service.NotificationService) *Server {
	authInterceptor := interceptor.NewAuthInterceptor(tm)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(authInterceptor.Unary(), interceptor.UnaryLogging()),
		grpc.StreamInterceptor(authInterceptor.Stream()),
	)

	RegisterWalletServiceServer(s, NewWalletHandler(wallets, notifications))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)

	srv := &Server{Server: s, health: hs}
	srv.SetServing(false)
	return srv
}

// SetServing flips both the overall and the wallet service health status.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(WalletServiceName, st)
}

// GracefulStop marks the server as not serving before draining calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}
