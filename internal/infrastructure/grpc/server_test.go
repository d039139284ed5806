package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wekeepgrowing/ott-entitlement/internal/config"
)

func TestServerHealth(t *testing.T) {
	cfg := config.Default()
	cfg.Server.GRPC.Host = "127.0.0.1"
	cfg.Server.GRPC.Port = 0

	srv := NewServer(cfg, zap.NewNop())
	addr, err := srv.Listen()
	require.NoError(t, err)

	go func() { _ = srv.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(addr.String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.Eventually(t, func() bool {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: cfg.Service.Name})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 3*time.Second, 20*time.Millisecond)

	srv.SetServing(false)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
