// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Backend BackendConfig `toml:"backend"`
	Workout WorkoutConfig `toml:"workout"`
}

// BackendConfig maps service connection settings.
type BackendConfig struct {
	URL     *string `toml:"url"`
	Timeout *string `toml:"timeout"`
}

// WorkoutConfig maps live workout settings. Intervals use Go duration syntax.
type WorkoutConfig struct {
	Mode        *string `toml:"mode"`
	Poll        *string `toml:"poll"`
	SummaryPoll *string `toml:"summary-poll"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Load reads the config file and applies environment overrides on top.
func Load(path string) (FileConfig, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	overrides, err := ParseEnv()
	if err != nil {
		return FileConfig{}, err
	}
	return cfg.WithEnv(overrides), nil
}
