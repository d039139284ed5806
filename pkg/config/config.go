// Package config loads layered operator configuration through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config exposes typed reads over the loaded settings.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
	IsSet(key string) bool
}

type viperConfig struct {
	*viper.Viper
}

const configDir = "configs"

// Load reads configs/{APP_ENV}/{name}.yaml, falling back to configs/example/{name}.yaml.
// Any key can be overridden by {NAME}_{KEY} environment variables, with dots replaced by underscores.
func Load(name string, defaults map[string]interface{}) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := os.Getenv("CONFIG_DIR")
	if configPath == "" {
		configPath = filepath.Join(configDir, env)
	}
	v.SetConfigName(name)
	v.AddConfigPath(configPath)
	v.AddConfigPath(filepath.Join(configDir, "example"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || len(defaults) == 0 {
			return nil, fmt.Errorf("failed to load %s config: %w", name, err)
		}
	}

	return &viperConfig{Viper: v}, nil
}
