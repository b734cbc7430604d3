package rune

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("max_loop_iterations = 50\ndebug = true\n"), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 50, cfg.MaxLoopIterations)
		assert.True(t, cfg.Debug)
	})

	t.Run("keeps unset fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("debug = true\n"), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxLoopIterations, cfg.MaxLoopIterations)
	})

	t.Run("rejects non-positive ceiling", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("max_loop_iterations = 0\n"), 0o644))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "must be positive")
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("max_loop_iterations = \n"), 0o644))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "parsing "+path)
	})
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	t.Run("walks up to parent", func(t *testing.T) {
		path := filepath.Join(root, ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("max_loop_iterations = 7\n"), 0o644))
		defer os.Remove(path)

		found, cfg, err := FindConfig(nested)
		require.NoError(t, err)
		assert.Equal(t, path, found)
		assert.Equal(t, 7, cfg.MaxLoopIterations)
	})

	t.Run("stops at git boundary", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("debug = true\n"), 0o644))
		require.NoError(t, os.Mkdir(filepath.Join(nested, ".git"), 0o755))

		found, cfg, err := FindConfig(nested)
		require.NoError(t, err)
		assert.Empty(t, found)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("RUNE_MAX_LOOP_ITERATIONS", "25")
		t.Setenv("RUNE_DEBUG", "true")

		cfg, err := ApplyEnv(DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.MaxLoopIterations)
		assert.True(t, cfg.Debug)
	})

	t.Run("invalid ceiling", func(t *testing.T) {
		t.Setenv("RUNE_MAX_LOOP_ITERATIONS", "-1")

		_, err := ApplyEnv(DefaultConfig())
		assert.ErrorContains(t, err, "RUNE_MAX_LOOP_ITERATIONS")
	})

	t.Run("unset leaves config alone", func(t *testing.T) {
		t.Setenv("RUNE_MAX_LOOP_ITERATIONS", "")
		t.Setenv("RUNE_DEBUG", "")

		cfg, err := ApplyEnv(DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}
