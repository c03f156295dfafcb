package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OUTPUT", "LOG_LEVEL", "DEDUPE_COMMENTS", "NO_SPLIT", "CONCURRENCY"} {
		t.Setenv(EnvPrefix+name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadFileInDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merge-pgn.yaml"), []byte("output: out.pgn\ndedupeComments: true\n"), 0o644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "out.pgn", cfg.Output)
	assert.True(t, cfg.DedupeComments)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadPrefersYml(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merge-pgn.yml"), []byte("logLevel: debug\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merge-pgn.yaml"), []byte("logLevel: error\n"), 0o644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadExplicitPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("noSplit: true\nconcurrency: 2\n"), 0o644))

	cfg, err := Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.True(t, cfg.NoSplit)
	assert.Equal(t, 2, cfg.Concurrency)

	_, err = Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadStatError(t *testing.T) {
	clearEnv(t)
	// A file in place of the directory fails with ENOTDIR, not not-exist.
	notDir := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0o644))

	_, err := Load(notDir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat config")
	assert.False(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merge-pgn.yml"), []byte("concurrency: [1, 2\n"), 0o644))

	_, err := Load(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge-pgn.yml")
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merge-pgn.yml"), []byte("logLevel: debug\noutput: a.pgn\n"), 0o644))
	t.Setenv("MERGE_PGN_LOG_LEVEL", "info")
	t.Setenv("MERGE_PGN_NO_SPLIT", "true")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "a.pgn", cfg.Output)
	assert.True(t, cfg.NoSplit)
}

func TestApplyEnvErrors(t *testing.T) {
	tests := map[string]string{
		"MERGE_PGN_DEDUPE_COMMENTS": "maybe",
		"MERGE_PGN_NO_SPLIT":        "sometimes",
		"MERGE_PGN_CONCURRENCY":     "many",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(func(name string) (string, bool) {
				if name == key {
					return value, true
				}
				return "", false
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
