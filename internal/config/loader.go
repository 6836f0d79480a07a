// Package config provides centralized configuration management for
// Notiva. Defaults and environment bindings are registered by the cmd
// package; Load turns the merged viper state into a typed Config.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// Load unmarshals the global viper state into a typed Config and
// stores it for GetConfig. Safe to call again on config reload.
func Load() (*Config, error) {
	cfg := &Config{}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	for name, class := range c.RateLimit.Classes {
		if class.MaxRequests < 0 {
			return fmt.Errorf("rate limit class %q: negative max_requests", name)
		}
		switch strings.ToLower(strings.TrimSpace(class.OnError)) {
		case "", "open", "closed":
		default:
			return fmt.Errorf("rate limit class %q: on_error must be open or closed", name)
		}
	}

	return nil
}

// GetConfig returns the current application configuration (thread-safe).
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultStorePath is where the database lands when neither a path nor
// a URL is configured.
func DefaultStorePath() string {
	return "./notiva.db"
}
