package config

import "time"

// GatewayConfig configures the payment gateway used for settlement.
type GatewayConfig struct {
	Provider      string `yaml:"provider"`
	KeyID         string `yaml:"key_id"`
	KeySecret     string `yaml:"key_secret"`
	WebhookSecret string `yaml:"webhook_secret"`
	BaseURL       string `yaml:"base_url"`
	// TestMode lets a bad client signature through. Never enable in production.
	TestMode bool `yaml:"test_mode"`

	CaptureTimeout time.Duration `yaml:"capture_timeout"`
	LookupTimeout  time.Duration `yaml:"lookup_timeout"`
	ClaimTTL       time.Duration `yaml:"claim_ttl"`
}

type StripeConfig struct {
	SecretKey      string `yaml:"secret_key"`
	PublishableKey string `yaml:"publishable_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
}

// ViewsConfig configures the view counter dedup cache.
type ViewsConfig struct {
	// Cache is redis or memory.
	Cache      string        `yaml:"cache"`
	DedupTTL   time.Duration `yaml:"dedup_ttl"`
	MaxEntries int           `yaml:"max_entries"`
}
