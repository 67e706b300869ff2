// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	API       APIConfig       `toml:"api"`
	Wizard    WizardConfig    `toml:"wizard"`
	Checkout  CheckoutConfig  `toml:"checkout"`
	DevServer DevServerConfig `toml:"devserver"`
}

// APIConfig maps backend connection settings.
type APIConfig struct {
	BaseURL   *string `toml:"base-url"`
	TimeoutMs *int    `toml:"timeout-ms"`
}

// WizardConfig maps wizard behaviour settings.
type WizardConfig struct {
	TransitionDelayMs *int  `toml:"transition-delay-ms"`
	Debug             *bool `toml:"debug"`
}

// CheckoutConfig maps the fixed checkout return URLs.
type CheckoutConfig struct {
	SuccessURL *string `toml:"success-url"`
	CancelURL  *string `toml:"cancel-url"`
	OpenURL    *bool   `toml:"open-url"`
}

// DevServerConfig maps settings for the local development backend.
type DevServerConfig struct {
	Addr *string `toml:"addr"`
	DB   *string `toml:"db"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
