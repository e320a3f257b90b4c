// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/factory-onboarding/internal/llm"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Input
	Input    string `json:"input,omitempty" yaml:"input,omitempty"`         // Path to a factory description
	InputURL string `json:"input_url,omitempty" yaml:"input_url,omitempty"` // URL of a page describing the factory

	// Onboarding
	Passes      int `json:"passes,omitempty" yaml:"passes,omitempty"`             // Independent extraction passes
	MaxParallel int `json:"max_parallel,omitempty" yaml:"max_parallel,omitempty"` // Concurrent passes

	// Model
	APIKey      string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`         // Gemini API key
	Provider    string            `json:"provider,omitempty" yaml:"provider,omitempty"`       // "gemini" or "genai"
	Tier        string            `json:"tier,omitempty" yaml:"tier,omitempty"`               // Model tier used for extraction
	Models      map[string]string `json:"models,omitempty" yaml:"models,omitempty"`           // Per-tier model overrides
	Temperature float32           `json:"temperature,omitempty" yaml:"temperature,omitempty"` // Sampling temperature

	// Behavior
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`           // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	ListenAddr  string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`   // HTTP listen address for serve
}

// Defaults returns the built-in configuration values
func Defaults() Config {
	return Config{
		Passes:      1,
		MaxParallel: 4,
		Provider:    string(llm.ProviderGemini),
		Tier:        string(llm.TierAdvanced),
		ListenAddr:  ":8080",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
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
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Input != "" && c.InputURL != "" {
		return fmt.Errorf("config error: 'input' and 'input_url' are mutually exclusive")
	}

	if c.Passes < 0 {
		return fmt.Errorf("config error: 'passes' must be non-negative")
	}
	if c.MaxParallel < 0 {
		return fmt.Errorf("config error: 'max_parallel' must be non-negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}

	switch llm.Provider(c.Provider) {
	case "", llm.ProviderGemini, llm.ProviderGenAI:
	default:
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}

	switch llm.ModelTier(c.Tier) {
	case "", llm.TierLite, llm.TierStandard, llm.TierAdvanced:
	default:
		return fmt.Errorf("config error: unknown tier %q", c.Tier)
	}

	if c.Input != "" {
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			return fmt.Errorf("config error: input file not found: %s", c.Input)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Input == "" {
		result.Input = defaults.Input
	}
	if result.InputURL == "" {
		result.InputURL = defaults.InputURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Tier == "" {
		result.Tier = defaults.Tier
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}

	if result.Passes == 0 {
		result.Passes = defaults.Passes
	}
	if result.MaxParallel == 0 {
		result.MaxParallel = defaults.MaxParallel
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}

	if len(defaults.Models) > 0 {
		merged := make(map[string]string, len(defaults.Models)+len(result.Models))
		for k, v := range defaults.Models {
			merged[k] = v
		}
		for k, v := range result.Models {
			merged[k] = v
		}
		result.Models = merged
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLMConfig builds the model configuration these settings describe
func (c *Config) LLMConfig() *llm.Config {
	out := llm.DefaultConfig()
	if c.Provider != "" {
		out = out.WithProvider(llm.Provider(c.Provider))
	}
	for tier, model := range c.Models {
		out = out.WithModel(llm.ModelTier(tier), model)
	}
	if c.Temperature > 0 {
		out.Temperature = c.Temperature
	}
	return out
}
