package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment-variable overrides.
// Example: LANDAI_RECOMMEND_FUSION_ALPHA=0.7 overrides recommend.fusion_alpha.
const envPrefix = "LANDAI"

// newViper builds a viper instance wired with defaults, env overrides, and
// (when path is non-empty) the YAML config file at path.
func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}
	return v, nil
}

// Load reads the configuration from the YAML file at path, applies environment
// overrides and defaults, validates the result, and returns it.  An empty path
// yields the pure defaults-plus-environment configuration.
func Load(path string) (*EngineConfig, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	var cfg EngineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that panics on error.  Intended for main() startup paths
// where a broken configuration should abort the process immediately.
func MustLoad(path string) *EngineConfig {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Watch loads the configuration from path and re-invokes onChange with the
// freshly parsed configuration every time the file changes on disk.  Reloads
// that fail to parse or validate are dropped and the previous configuration
// stays in effect; onChange is only called with valid configurations.
//
// The watch runs on viper's internal goroutine and stops when the process
// exits; there is no explicit stop handle, matching the intended use of a
// single long-lived watch per process.
func Watch(path string, onChange func(*EngineConfig)) (*EngineConfig, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	var cfg EngineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var next EngineConfig
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		if err := next.Validate(); err != nil {
			return
		}
		onChange(&next)
	})
	v.WatchConfig()

	return &cfg, nil
}
