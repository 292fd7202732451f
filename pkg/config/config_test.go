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
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "salesdesk", cfg.App.Name)
	assert.Equal(t, 5, cfg.Numbering.MaxAttempts)
	assert.Equal(t, 5, cfg.Numbering.PadWidth)
	assert.False(t, cfg.Summary.RecomputeOnUpdate)
	assert.Equal(t, time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, ":8080", cfg.HTTP.Addr())
	assert.Equal(t, 24*time.Hour, cfg.HTTP.IdempotencyTTL)
	assert.Equal(t, time.Hour, cfg.Worker.CleanupInterval)
	assert.False(t, cfg.Numbering.CacheNames)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NUMBERING_MAX_ATTEMPTS", "9")
	t.Setenv("SUMMARY_RECOMPUTE_ON_UPDATE", "true")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("WORKER_POLL_INTERVAL", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Numbering.MaxAttempts)
	assert.True(t, cfg.Summary.RecomputeOnUpdate)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.Worker.PollInterval)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salesdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("numbering:\n  pad_width: 6\nhttp:\n  port: 9090\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Numbering.PadWidth)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsZeroAttempts(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NUMBERING_MAX_ATTEMPTS", "0")

	_, err := Load("")
	assert.ErrorContains(t, err, "max_attempts")
}
