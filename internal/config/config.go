// Package config holds user preferences for verdant. Preferences live in a
// JSON file under the data directory and can be overridden per-run through
// environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"verdant/internal/advisor"
)

const fileName = "config.json"

// Environment overrides, applied after the file is read.
const (
	EnvModel = "VERDANT_MODEL"
	EnvTheme = "VERDANT_THEME"
	// EnvAPIKey is read by the UI to pre-seed the key store, not stored here.
	EnvAPIKey = "GEMINI_API_KEY"
)

// Config holds user preferences.
type Config struct {
	Model string `json:"model"` // Gemini model name
	Theme string `json:"theme"` // "light" or "dark"
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Model: advisor.DefaultModel,
		Theme: "dark",
	}
}

// Load reads the configuration from dir, falling back to defaults when the
// file is missing, then applies environment overrides.
func Load(dir string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	switch {
	case os.IsNotExist(err):
		// First run.
	case err != nil:
		return applyEnv(cfg), err
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return applyEnv(Default()), fmt.Errorf("failed to parse config: %w", err)
		}
		if cfg.Model == "" {
			cfg.Model = advisor.DefaultModel
		}
	}

	return applyEnv(cfg), nil
}

// Save writes the configuration to dir, creating it when needed.
func Save(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, fileName), data, 0644)
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Theme = v
	}
	return cfg
}
