package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/ott-entitlement/internal/adapter/cache"
	handlers "github.com/wekeepgrowing/ott-entitlement/internal/adapter/handler/http"
	"github.com/wekeepgrowing/ott-entitlement/internal/config"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/database"
	"github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/geoip"
	grpcServer "github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/http"
	"github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/metrics"
	"github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/provider"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
	"github.com/wekeepgrowing/ott-entitlement/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("service", cfg.Service.Name))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Document store
	mongoClient, db, err := database.NewMongoConnection(ctx, &cfg.Mongo, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.CloseMongo(mongoClient, zapLogger); err != nil {
			zapLogger.Error("Failed to close MongoDB connection", zap.Error(err))
		}
	}()
	if err := database.EnsureIndexes(ctx, db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	// Optional audit ledger
	var auditDB *gorm.DB
	if cfg.Database.Enabled {
		auditDB, err = database.NewPostgresConnection(&cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to audit database", zap.Error(err))
		}
		defer func() {
			if err := database.ClosePostgres(auditDB, zapLogger); err != nil {
				zapLogger.Error("Failed to close audit database", zap.Error(err))
			}
		}()
		if err := database.Migrate(auditDB, zapLogger); err != nil {
			zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
		}
	}

	repos := database.NewRepositories(db, auditDB, zapLogger)

	// Redis backs the view dedup cache and entitlement events
	redisClient, err := database.NewRedisClient(&cfg.Redis, zapLogger)
	if err != nil {
		if cfg.Views.Cache == "redis" {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		zapLogger.Warn("Redis unavailable, events disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	viewCache, stopCache := newViewCache(cfg, redisClient)
	defer stopCache()

	var events messaging.Publisher = messaging.NopPublisher{}
	if redisClient != nil {
		events = messaging.NewRedisPublisher(redisClient, "")
	}

	geo := newCountryResolver(cfg, zapLogger)
	defer geo.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	gateway, err := provider.NewFactory(cfg, zapLogger).GetProviderFromString(cfg.Gateway.Provider)
	if err != nil {
		zapLogger.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Usecases
	pricing := usecase.NewPricingService(repos.Country, cfg.Service.DefaultCurrency, zapLogger)
	devices := usecase.NewDeviceService(repos.User, recorder, zapLogger)
	access := usecase.NewEntitlementService(repos.Entitlement, repos.Plan, repos.Content, zapLogger)
	views := usecase.NewViewService(repos.Content, viewCache, cfg.Views.DedupTTL, recorder, zapLogger)
	contents := usecase.NewContentAccessService(repos.Content, pricing, devices, access, views, zapLogger)

	settlement := usecase.NewSettlementService(usecase.SettlementDeps{
		Entitlements: repos.Entitlement,
		Plans:        repos.Plan,
		Contents:     repos.Content,
		Gateway:      gateway,
		Pricing:      pricing,
		Access:       access,
		Audit:        repos.AuditLog,
		Events:       events,
		EventChannel: cfg.Service.EventChannel,
		Metrics:      recorder,
	}, usecase.SettlementConfig{
		TestMode:        cfg.Gateway.TestMode,
		CaptureTimeout:  cfg.Gateway.CaptureTimeout,
		LookupTimeout:   cfg.Gateway.LookupTimeout,
		ClaimTTL:        cfg.Gateway.ClaimTTL,
		DefaultCurrency: cfg.Service.DefaultCurrency,
	}, zapLogger)

	grants := usecase.NewGrantService(usecase.GrantDeps{
		Entitlements: repos.Entitlement,
		Users:        repos.User,
		Plans:        repos.Plan,
		Contents:     repos.Content,
		Pricing:      pricing,
		Access:       access,
		Audit:        repos.AuditLog,
		Events:       events,
		EventChannel: cfg.Service.EventChannel,
		Metrics:      recorder,
	}, zapLogger)

	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Handlers{
		Subscription: handlers.NewSubscriptionHandler(settlement, access, geo, zapLogger),
		Admin:        handlers.NewAdminHandler(grants, settlement, views, repos.AuditLog, zapLogger),
		Content:      handlers.NewContentHandler(contents, geo, zapLogger),
		Device:       handlers.NewDeviceHandler(devices, zapLogger),
		Webhook:      handlers.NewWebhookHandler(settlement, zapLogger),
	}, registry)

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Enabled {
		grpcSrv = grpcServer.NewServer(cfg, zapLogger)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
			}
		}()
	}

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Info("HTTP server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 15*time.Second)
	defer shutdownCancel()

	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}

// newViewCache picks the dedup store. The returned func releases it.
func newViewCache(cfg *config.Config, client *redis.Client) (repository.ViewDedupCache, func()) {
	if cfg.Views.Cache == "redis" && client != nil {
		return cache.NewRedisViewCache(client), func() {}
	}
	mem := cache.NewMemoryViewCache(cfg.Views.MaxEntries)
	mem.StartJanitor(time.Minute)
	return mem, mem.Close
}

func newCountryResolver(cfg *config.Config, log *zap.Logger) geoip.CountryResolver {
	if cfg.GeoIP.DatabasePath == "" {
		return geoip.NopResolver{}
	}
	reader, err := geoip.Open(cfg.GeoIP.DatabasePath)
	if err != nil {
		log.Warn("GeoIP database unavailable, country falls back to request hints",
			zap.String("path", cfg.GeoIP.DatabasePath), zap.Error(err))
		return geoip.NopResolver{}
	}
	return reader
}
