// Command sync-plans upserts the plan and country catalog from a YAML file.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/adapter/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/catalog"
	"github.com/wekeepgrowing/ott-entitlement/internal/config"
	"github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/database"
	pkgconfig "github.com/wekeepgrowing/ott-entitlement/pkg/config"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

func main() {
	file := flag.String("file", "", "catalog file; overrides catalog.file")
	dryRun := flag.Bool("dry-run", false, "validate the catalog without writing")
	flag.Parse()

	cfg, err := pkgconfig.Load("sync-plans", map[string]interface{}{
		"mongo.uri":      "mongodb://localhost:27017",
		"mongo.database": "ott",
		"mongo.timeout":  60 * time.Second,
		"catalog.file":   "./configs/example/catalog.yaml",
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

	path := *file
	if path == "" {
		path = cfg.GetString("catalog.file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		zapLogger.Fatal("Failed to read catalog", zap.String("path", path), zap.Error(err))
	}
	f, err := catalog.Parse(data)
	if err != nil {
		zapLogger.Fatal("Invalid catalog", zap.String("path", path), zap.Error(err))
	}
	if *dryRun {
		zapLogger.Info("Catalog is valid",
			zap.Int("countries", len(f.Countries)),
			zap.Int("plans", len(f.Plans)))
		return
	}

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

	res, err := catalog.Apply(ctx, f,
		repository.NewPlanRepository(db, zapLogger),
		repository.NewCountryRepository(db, zapLogger),
		zapLogger)
	if err != nil {
		zapLogger.Fatal("Catalog sync failed",
			zap.Int("countries_written", res.Countries),
			zap.Int("plans_written", res.Plans),
			zap.Error(err))
	}
	zapLogger.Info("Catalog synced", zap.Int("countries", res.Countries), zap.Int("plans", res.Plans))
}
