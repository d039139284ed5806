package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/config"
)

// NewRedisClient connects and pings Redis.
func NewRedisClient(cfg *config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("Redis connection failed", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Info("Redis connection established", zap.String("addr", cfg.Addr))
	return client, nil
}
