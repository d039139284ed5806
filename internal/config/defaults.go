package config

import (
	"time"

	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// Default returns a configuration usable for local development.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:            "entitlement",
			Environment:     "development",
			DefaultCurrency: "INR",
			EventChannel:    "entitlement.events",
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{Host: "0.0.0.0", Port: 8080},
			GRPC: GRPCConfig{Host: "0.0.0.0", Port: 9090},
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "ott",
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			Port:    5432,
			SSLMode: "disable",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Gateway: GatewayConfig{
			Provider:       "razorpay",
			BaseURL:        "https://api.razorpay.com/v1",
			CaptureTimeout: 30 * time.Second,
			LookupTimeout:  5 * time.Second,
			ClaimTTL:       2 * time.Minute,
		},
		JWT: JWTConfig{
			AdminRole: "admin",
			SkipPaths: []string{"/health", "/metrics", "/webhooks"},
		},
		Views: ViewsConfig{
			Cache:      "redis",
			DedupTTL:   24 * time.Hour,
			MaxEntries: 100000,
		},
		Log: defaultLog(),
	}
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Service.DefaultCurrency == "" {
		c.Service.DefaultCurrency = d.Service.DefaultCurrency
	}
	if c.Mongo.QueryTimeout <= 0 {
		c.Mongo.QueryTimeout = d.Mongo.QueryTimeout
	}
	if c.Mongo.ConnectTimeout <= 0 {
		c.Mongo.ConnectTimeout = d.Mongo.ConnectTimeout
	}
	if c.Gateway.CaptureTimeout <= 0 {
		c.Gateway.CaptureTimeout = d.Gateway.CaptureTimeout
	}
	// lookups must stay materially shorter than captures
	if c.Gateway.LookupTimeout <= 0 || c.Gateway.LookupTimeout >= c.Gateway.CaptureTimeout {
		c.Gateway.LookupTimeout = d.Gateway.LookupTimeout
		if c.Gateway.LookupTimeout >= c.Gateway.CaptureTimeout {
			c.Gateway.LookupTimeout = c.Gateway.CaptureTimeout / 3
		}
	}
	if c.Gateway.ClaimTTL <= 0 {
		c.Gateway.ClaimTTL = d.Gateway.ClaimTTL
	}
	if c.Views.DedupTTL <= 0 {
		c.Views.DedupTTL = d.Views.DedupTTL
	}
	if c.Views.MaxEntries <= 0 {
		c.Views.MaxEntries = d.Views.MaxEntries
	}
	if c.JWT.AdminRole == "" {
		c.JWT.AdminRole = d.JWT.AdminRole
	}
	if c.Service.IsProduction() {
		c.Gateway.TestMode = false
	}
}

func defaultLog() logger.Config {
	return logger.Config{Level: "info", Format: "json", Output: "stdout"}
}
