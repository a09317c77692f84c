package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EXAMPREP_DB", filepath.Join(t.TempDir(), "x.db"))
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Generation.BatchSize)
	assert.Equal(t, "medium", cfg.Generation.Difficulty)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, ":8080", cfg.Backend.ListenAddr)
	assert.Empty(t, cfg.Redis.Address)
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("EXAMPREP_REDIS_ADDRESS=localhost:6390\nEXAMPREP_CACHE_TTL=90m\n"), 0o600))

	t.Setenv("EXAMPREP_DB", filepath.Join(dir, "x.db"))
	t.Setenv("EXAMPREP_BATCH_SIZE", "20")
	// godotenv does not override variables that are already set.
	t.Setenv("EXAMPREP_REDIS_ADDRESS", "")
	os.Unsetenv("EXAMPREP_REDIS_ADDRESS")
	t.Setenv("EXAMPREP_CACHE_TTL", "")
	os.Unsetenv("EXAMPREP_CACHE_TTL")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Generation.BatchSize)
	assert.Equal(t, "localhost:6390", cfg.Redis.Address)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("EXAMPREP_DB", filepath.Join(t.TempDir(), "x.db"))
	t.Setenv("EXAMPREP_BATCH_SIZE", "21")
	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	assert.Error(t, err)

	t.Setenv("EXAMPREP_BATCH_SIZE", "5")
	t.Setenv("EXAMPREP_DIFFICULTY", "extreme")
	_, err = Load(filepath.Join(t.TempDir(), "none.env"))
	assert.Error(t, err)
}
