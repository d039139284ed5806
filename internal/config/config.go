package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Server   ServerConfig   `yaml:"server"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Stripe   StripeConfig   `yaml:"stripe"`
	JWT      JWTConfig      `yaml:"jwt"`
	GeoIP    GeoIPConfig    `yaml:"geoip"`
	Views    ViewsConfig    `yaml:"views"`
	Log      logger.Config  `yaml:"log"`
}

func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/entitlement.yaml"
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML after expanding ${VAR} references from the environment, then applies defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

type ServiceConfig struct {
	Name            string `yaml:"name"`
	Environment     string `yaml:"environment"`
	Version         string `yaml:"version"`
	ClientURL       string `yaml:"client_url"`
	DefaultCurrency string `yaml:"default_currency"`
	EventChannel    string `yaml:"event_channel"`
}

func (s ServiceConfig) IsProduction() bool {
	return s.Environment == "production"
}

type JWTConfig struct {
	Secret    string   `yaml:"secret"`
	AdminRole string   `yaml:"admin_role"`
	SkipPaths []string `yaml:"skip_paths"`
}

type GeoIPConfig struct {
	DatabasePath string `yaml:"database_path"`
}
