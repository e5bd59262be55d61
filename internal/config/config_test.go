package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolvePlaceholders(t *testing.T) {
	env := lookupFrom(map[string]string{
		"S3_ENDPOINT": "https://objects.example.com",
		"S3_KEY":      "AKIA123",
	})

	got, err := ResolvePlaceholders("Endpoint=%S3_ENDPOINT%;AccessKeyId=%S3_KEY%", env)
	require.NoError(t, err)
	assert.Equal(t, "Endpoint=https://objects.example.com;AccessKeyId=AKIA123", got)

	got, err = ResolvePlaceholders("no placeholders, 100% literal", env)
	require.NoError(t, err)
	assert.Equal(t, "no placeholders, 100% literal", got)

	_, err = ResolvePlaceholders("Endpoint=%S3_ENDPOINT%;SecretAccessKey=%S3_SECRET%", env)
	require.ErrorIs(t, err, ErrUnresolvedPlaceholder)
	assert.Contains(t, err.Error(), "S3_SECRET")
}

func TestStorageConnection(t *testing.T) {
	env := lookupFrom(map[string]string{"HOST": "minio:9000"})

	t.Run("empty is not configured", func(t *testing.T) {
		_, err := StorageConfig{}.resolve(env)
		assert.ErrorIs(t, err, ErrStorageNotConfigured)
	})

	t.Run("development sentinel is not configured", func(t *testing.T) {
		_, err := StorageConfig{ConnectionString: DevelopmentStorage}.resolve(env)
		assert.ErrorIs(t, err, ErrStorageNotConfigured)
	})

	t.Run("placeholder expanded", func(t *testing.T) {
		got, err := StorageConfig{ConnectionString: "Endpoint=http://%HOST%"}.resolve(env)
		require.NoError(t, err)
		assert.Equal(t, "Endpoint=http://minio:9000", got)
	})

	t.Run("unresolved placeholder fails", func(t *testing.T) {
		_, err := StorageConfig{ConnectionString: "Endpoint=%NOPE%"}.resolve(env)
		assert.ErrorIs(t, err, ErrUnresolvedPlaceholder)
	})
}

func TestLoadReadsStorageFromFileAndEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `storage:
  connection_string: "Endpoint=%TEST_S3_ENDPOINT%"
  container_name: from-file
  create_container: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("STORAGE_CONNECTION_STRING", "")
	t.Setenv("STORAGE_CONTAINER_NAME", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Endpoint=%TEST_S3_ENDPOINT%", cfg.Storage.ConnectionString)
	assert.Equal(t, SourceFile, cfg.Storage.Source)
	assert.Equal(t, "from-file", cfg.Storage.ContainerName)
	assert.False(t, cfg.Storage.CreateContainer)

	t.Setenv("STORAGE_CONNECTION_STRING", "Endpoint=http://env")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "Endpoint=http://env", cfg.Storage.ConnectionString)
	assert.Equal(t, SourceEnv, cfg.Storage.Source)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("STORAGE_CONNECTION_STRING", "")
	t.Setenv("STORAGE_CONTAINER_NAME", "")
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("SESSION_IDLE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultContainerName, cfg.Storage.ContainerName)
	assert.Empty(t, cfg.Storage.ConnectionString)
	assert.Equal(t, "0.0.0.0:9191", cfg.Address())
	assert.Equal(t, "goals.txt", cfg.Seed.Path)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
}
