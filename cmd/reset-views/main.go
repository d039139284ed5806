// Command reset-views zeroes the daily, weekly or monthly view counters. It is meant to run
// from cron at each period boundary.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/adapter/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/config"
	domainRepo "github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/database"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
	pkgconfig "github.com/wekeepgrowing/ott-entitlement/pkg/config"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

func main() {
	period := flag.String("period", "", "counter to reset: daily, weekly or monthly")
	flag.Parse()

	cfg, err := pkgconfig.Load("reset-views", map[string]interface{}{
		"mongo.uri":      "mongodb://localhost:27017",
		"mongo.database": "ott",
		"mongo.timeout":  60 * time.Second,
		"log.level":      "info",
	})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{Level: cfg.GetString("log.level"), Format: "json", Output: "stdout"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	timeout := cfg.GetDuration("mongo.timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, db, err := database.NewMongoConnection(ctx, &config.MongoConfig{
		URI:            cfg.GetString("mongo.uri"),
		Database:       cfg.GetString("mongo.database"),
		Username:       cfg.GetString("mongo.username"),
		Password:       cfg.GetString("mongo.password"),
		ConnectTimeout: timeout,
		QueryTimeout:   timeout,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.CloseMongo(client, zapLogger)

	views := usecase.NewViewService(repository.NewContentRepository(db, zapLogger), nil, 0, nil, zapLogger)
	n, err := views.ResetViews(ctx, domainRepo.ViewPeriod(*period))
	if err != nil {
		zapLogger.Fatal("Failed to reset views", zap.String("period", *period), zap.Error(err))
	}
	zapLogger.Info("Done", zap.String("period", *period), zap.Int64("modified", n))
}
