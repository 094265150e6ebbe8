package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// appDirName names the per-user data and config directories this engine
// creates.
const appDirName = "corpusgraph"

// DefaultDataDir resolves the per-user data directory the database lives in
// when no explicit --data-dir flag, CORPUSGRAPH_DATA_DIR env var, or
// data_dir config key overrides it: <home>/.corpusgraph, with <home> taken
// from os.UserHomeDir(). No XDG path logic is applied.
func DefaultDataDir() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(dir, "."+appDirName), nil
}

// DefaultConfigPath resolves where Load looks for a config file absent an
// explicit --config flag: <home>/.corpusgraph/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
