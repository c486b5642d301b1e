package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `
server:
  address: ":9090"
database:
  name: "fitness_test"
jwt:
  secret: "s3cret"
  expiration: "30m"
s3:
  bucket_name: "media"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "fitness_test", cfg.Database.Name)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "media", cfg.S3.BucketName)
	assert.True(t, cfg.S3.UseSSL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8, cfg.Cache.ExerciseSizeMB)
	assert.Equal(t, 10*time.Minute, cfg.Cache.ExerciseTTL)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `
jwt:
  secret: "from-file"
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("JWT_SECRET", "env-only")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-only", cfg.JWT.Secret)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}
