package rune

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the project file looked up by FindConfig.
const ConfigFileName = "rune.toml"

// DefaultMaxLoopIterations bounds every while loop unless configured.
const DefaultMaxLoopIterations = 100000

// Config controls a single engine.
type Config struct {
	// MaxLoopIterations is the number of iterations after which a while
	// loop fails with a runtime error.
	MaxLoopIterations int `toml:"max_loop_iterations"`

	// Debug enables debug-level stage logging and AST dumps.
	Debug bool `toml:"debug"`
}

// DefaultConfig returns the configuration used when no rune.toml is found.
func DefaultConfig() Config {
	return Config{MaxLoopIterations: DefaultMaxLoopIterations}
}

// LoadConfig loads a rune.toml file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.MaxLoopIterations <= 0 {
		return cfg, fmt.Errorf("parsing %s: max_loop_iterations must be positive", path)
	}
	return cfg, nil
}

// FindConfig searches for rune.toml starting from dir and walking up to
// parent directories, stopping at a .git boundary. It returns the path and
// the parsed config, or an empty path and the defaults if none is found.
func FindConfig(dir string) (string, Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", DefaultConfig(), err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadConfig(path)
			if err != nil {
				return "", DefaultConfig(), err
			}
			return path, cfg, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", DefaultConfig(), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", DefaultConfig(), nil
		}
		dir = parent
	}
}

// ApplyEnv overrides cfg from RUNE_MAX_LOOP_ITERATIONS and RUNE_DEBUG.
func ApplyEnv(cfg Config) (Config, error) {
	if v := os.Getenv("RUNE_MAX_LOOP_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("RUNE_MAX_LOOP_ITERATIONS: invalid value %q", v)
		}
		cfg.MaxLoopIterations = n
	}
	if v := os.Getenv("RUNE_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("RUNE_DEBUG: invalid value %q", v)
		}
		cfg.Debug = debug
	}
	return cfg, nil
}
