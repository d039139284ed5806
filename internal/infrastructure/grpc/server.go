package grpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wekeepgrowing/ott-entitlement/internal/config"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// Server exposes the standard gRPC health service so orchestrators can health-check the process
// alongside the HTTP API.
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: log,
		server: grpc.NewServer(logger.ServerOptions(log)...),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	return s
}

// Listen binds the configured address. Start calls it when no listener is bound yet.
func (s *Server) Listen() (net.Addr, error) {
	addr := fmt.Sprintf("%s:%d", s.config.Server.GRPC.Host, s.config.Server.GRPC.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	return listener.Addr(), nil
}

func (s *Server) Start() error {
	if s.listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(s.config.Service.Name, healthpb.HealthCheckResponse_SERVING)

	s.logger.Info("Starting gRPC server", zap.String("address", s.listener.Addr().String()))

	return s.server.Serve(s.listener)
}

// SetServing flips the reported status, e.g. when a backing store goes away.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.config.Service.Name, status)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	}
}
