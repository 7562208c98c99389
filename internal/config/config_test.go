package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomtech-site/backend/internal/config"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8099", cfg.Listen)
	assert.Equal(t, "UTC", cfg.Timezone)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Europe/Paris\nweek_start: friday\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, "sunday", cfg.WeekStart, "unknown week start falls back")
	assert.Equal(t, "@every 1m", cfg.ReminderScan)
	assert.Equal(t, "v1", cfg.Assets.Version)
	assert.NotEmpty(t, cfg.Assets.Dir)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [not scalar"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}
