package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"cohort-indexer/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "cohort-", cfg.Crawl.CohortPrefix)
	assert.Equal(t, 10, cfg.Crawl.SettleSeconds)
	assert.Equal(t, 1000, cfg.Crawl.TickMillis)
	assert.Equal(t, "file", cfg.Output.Backend)
	assert.Equal(t, "blacklist.yaml", cfg.Blacklist.File)
	assert.True(t, cfg.Index.ResumeOnOpen)
	assert.Equal(t, 5, cfg.Transport.RetryAttempts)
	assert.InDelta(t, 2.0, cfg.Transport.RetryMultiplier, 0.0001)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	env := "CRAWL_SETTLE_SECONDS=3\nOUTPUT_BACKEND=s3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Setenv("CRAWL_SETTLE_SECONDS", "")
	t.Setenv("OUTPUT_BACKEND", "")
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Crawl.SettleSeconds)
	assert.Equal(t, "s3", cfg.Output.Backend)
	assert.Equal(t, "9999", cfg.Server.Port)
}
