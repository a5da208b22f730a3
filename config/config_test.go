package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesAnnealDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 0.97, cfg.Alpha)
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesMergeOverDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\nalpha: 0.95\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 0.95, cfg.Alpha)
	assert.Equal(t, Default().K, cfg.K)
}

func TestAnnealOptionsProjectsFields(t *testing.T) {
	cfg := Default()
	cfg.Alpha = 0.9
	opts := cfg.AnnealOptions()
	assert.Equal(t, 0.9, opts.Alpha)
	assert.Equal(t, cfg.K, opts.K)
}
