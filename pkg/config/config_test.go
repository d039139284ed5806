package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	content := "mongo:\n  uri: mongodb://db:27017\n  database: ott\nreset:\n  timeout: 30s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reset-views.yaml"), []byte(content), 0o644))
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("RESET_VIEWS_MONGO_DATABASE", "ott_test")

	cfg, err := Load("reset-views", nil)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", cfg.GetString("mongo.uri"))
	assert.Equal(t, "ott_test", cfg.GetString("mongo.database"))
	assert.Equal(t, 30*time.Second, cfg.GetDuration("reset.timeout"))
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())

	cfg, err := Load("reset-views", map[string]interface{}{"mongo.database": "ott"})
	require.NoError(t, err)
	assert.Equal(t, "ott", cfg.GetString("mongo.database"))

	_, err = Load("reset-views", nil)
	assert.Error(t, err)
}
