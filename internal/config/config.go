// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags and environment variables.
type Config struct {
	// Paths
	InitialState string `json:"initial_state,omitempty"` // Path to the initial conversation state JSON
	ReplayDir    string `json:"replay_dir,omitempty"`    // Directory of recorded responses for replay mode

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for transcript storage
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	MaxMessages int    `json:"max_messages,omitempty"` // History bound before old messages are dropped

	// Model overrides per tier; empty values use the built-in defaults.
	ModelLite     string `json:"model_lite,omitempty"`
	ModelStandard string `json:"model_standard,omitempty"`
	ModelAdvanced string `json:"model_advanced,omitempty"`
}

// DefaultMaxMessages bounds stored conversation history.
const DefaultMaxMessages = 30

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills empty fields from environment variables. Values already set
// (from a config file or flags) win over the environment.
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.ReplayDir == "" {
		c.ReplayDir = os.Getenv("RESUME_CHAT_REPLAY_DIR")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MaxMessages < 0 {
		return fmt.Errorf("config error: 'max_messages' must be non-negative")
	}
	if c.InitialState != "" {
		if _, err := os.Stat(c.InitialState); os.IsNotExist(err) {
			return fmt.Errorf("config error: initial state file not found: %s", c.InitialState)
		}
	}
	if c.ReplayDir != "" {
		info, err := os.Stat(c.ReplayDir)
		if os.IsNotExist(err) {
			return fmt.Errorf("config error: replay directory not found: %s", c.ReplayDir)
		}
		if err == nil && !info.IsDir() {
			return fmt.Errorf("config error: replay path is not a directory: %s", c.ReplayDir)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.InitialState == "" {
		result.InitialState = defaults.InitialState
	}
	if result.ReplayDir == "" {
		result.ReplayDir = defaults.ReplayDir
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ModelLite == "" {
		result.ModelLite = defaults.ModelLite
	}
	if result.ModelStandard == "" {
		result.ModelStandard = defaults.ModelStandard
	}
	if result.ModelAdvanced == "" {
		result.ModelAdvanced = defaults.ModelAdvanced
	}
	if result.MaxMessages == 0 {
		if defaults.MaxMessages > 0 {
			result.MaxMessages = defaults.MaxMessages
		} else {
			result.MaxMessages = DefaultMaxMessages
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
