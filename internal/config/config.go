// Package config loads the fleetname configuration. Precedence, lowest to
// highest: built-in defaults, TOML config file, FLEETNAME_ environment
// variables. CLI flags override on top of this at the command layer.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration.
type Config struct {
	// Digits is the number of trailing hardware UUID characters used as the
	// name suffix.
	Digits int `koanf:"digits"`

	Fleet struct {
		// URL is the base URL of the fleet-management API, e.g.
		// "https://acme.api.example.com/api".
		URL string `koanf:"url"`
		// Token is the bearer token for the fleet-management API.
		Token string `koanf:"token"`
	} `koanf:"fleet"`
}

// defaultPaths are tried in order when no config file is given.
var defaultPaths = []string{"./fleetname.toml", "$HOME/.fleetname.toml"}

// Load loads the configuration from the given file, or from the default
// locations when path is empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"digits": 7,
	}, "."), nil)

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, candidate := range defaultPaths {
			candidate = os.ExpandEnv(candidate)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := k.Load(file.Provider(candidate), toml.Parser()); err == nil {
				break
			}
		}
	}

	// FLEETNAME_FLEET_TOKEN → fleet.token
	k.Load(env.Provider("FLEETNAME_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "FLEETNAME_")), "_", ".", -1)
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for values the pipeline cannot
// work with.
func Validate(cfg *Config) error {
	if cfg.Digits < 1 {
		return fmt.Errorf("digits must be positive, got %d", cfg.Digits)
	}

	return nil
}
