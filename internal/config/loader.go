package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// ConfigDirEnv overrides the starting directory for the upward config
// search.
const ConfigDirEnv = "TASKORCHESTRATOR_CONFIG_DIR"

// ConfigRelPath is where the engine looks for its workflow configuration,
// relative to a discovered project root.
const ConfigRelPath = ".taskorchestrator/config.yaml"

var (
	cacheMu   sync.RWMutex
	cached    *Config
	cachedDir string
)

// Load discovers and parses at most one .taskorchestrator/config.yaml by
// walking up from startDir (or $TASKORCHESTRATOR_CONFIG_DIR if set). A
// missing file is not an error: Load returns the embedded defaults. The
// returned value is cached per directory and is treated as immutable for
// the process lifetime.
func Load(startDir string) (*Config, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		startDir = dir
	}
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve start directory: %w", err)
	}

	cacheMu.RLock()
	if cached != nil && cachedDir == abs {
		defer cacheMu.RUnlock()
		return cached, nil
	}
	cacheMu.RUnlock()

	path := discover(abs)

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("config: parse embedded defaults: %w", err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode merged configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cacheMu.Lock()
	cached = cfg
	cachedDir = abs
	cacheMu.Unlock()

	return cfg, nil
}

// discover walks upward from dir looking for ConfigRelPath, stopping at
// the filesystem root. Returns "" if none is found.
func discover(dir string) string {
	for {
		candidate := filepath.Join(dir, ConfigRelPath)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ResetCache clears the process-wide config cache; used by tests that load
// configuration from multiple directories in the same process.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cached = nil
	cachedDir = ""
}
