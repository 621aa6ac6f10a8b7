package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the exporter's settings. Precedence, lowest to highest:
// defaults, YAML config file, environment variables, command-line flags.
type Config struct {
	DBPath          string `yaml:"db_path" env:"WEBUI_DB_PATH"`
	ListenAddr      string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	RefreshInterval int    `yaml:"refresh_interval" env:"EXPORT_INTERVAL"` // seconds
	StoreTimeout    int    `yaml:"store_timeout" env:"STORE_TIMEOUT"`      // seconds
}

// DefaultConfig returns the built-in defaults, matching the container
// deployment layout.
func DefaultConfig() Config {
	return Config{
		DBPath:          "/data/webui.db",
		ListenAddr:      ":2112",
		RefreshInterval: 15,
		StoreTimeout:    10,
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file, and the
// environment. A missing file at path is only an error when the path was
// given explicitly.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			// Default location, nothing there. Fine.
		default:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultConfig().StoreTimeout
	}

	return cfg, nil
}

// Interval returns the refresh interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// Timeout returns the per-refresh store timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.StoreTimeout) * time.Second
}
