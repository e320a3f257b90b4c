package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/factory-onboarding/internal/config"
	"github.com/jonathan/factory-onboarding/internal/ingestion"
	"github.com/jonathan/factory-onboarding/internal/llm"
)

// apiKeyEnv is the environment variable holding the Gemini API key
const apiKeyEnv = "GEMINI_API_KEY"

// databaseURLEnv is consulted when neither --db-url nor the config file set one
const databaseURLEnv = "DATABASE_URL"

// loadSettings returns the config file (if any) merged over built-in defaults
func loadSettings() (config.Config, error) {
	defaults := config.Defaults()
	if configPath == "" {
		return defaults, nil
	}

	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := fileCfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return fileCfg.MergeWithDefaults(defaults), nil
}

// resolveAPIKey picks the key from the flag, then the environment, then the config file
func resolveAPIKey(flagValue string, cfg config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key, nil
	}
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	return "", fmt.Errorf("API key is required: use --api-key, %s or api_key in the config file", apiKeyEnv)
}

// resolveDatabaseURL picks the URL from the flag, then the config file, then the environment.
// An empty result means persistence is off.
func resolveDatabaseURL(flagValue string, cfg config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return os.Getenv(databaseURLEnv)
}

// newStructuredCaller builds the model capability the onboarding stages use.
// The returned close function releases the provider client.
func newStructuredCaller(ctx context.Context, cfg config.Config, apiKey string) (llm.StructuredCaller, func() error, error) {
	client, err := llm.NewClient(ctx, cfg.LLMConfig(), apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewStructuredClient(client, llm.ModelTier(cfg.Tier)), client.Close, nil
}

// readDescription loads the factory description from a URL, a file or stdin.
// A path of "" or "-" reads stdin.
func readDescription(ctx context.Context, path, url string, stdin io.Reader) (string, *ingestion.Metadata, error) {
	if path != "" && path != "-" && url != "" {
		return "", nil, fmt.Errorf("--in and --url are mutually exclusive")
	}
	switch {
	case url != "":
		return ingestion.IngestFromURL(ctx, url, ingestion.URLOptions{Logger: currentLogger()})
	case path == "" || path == "-":
		return ingestion.IngestFromReader(stdin)
	default:
		return ingestion.IngestFromFile(path)
	}
}

// currentLogger returns the command logger, or a no-op logger outside a command run
func currentLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// readJSONInput reads a whole JSON document from a file or stdin
func readJSONInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), ingestion.MaxInputBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > ingestion.MaxInputBytes {
			return nil, fmt.Errorf("input exceeds %d bytes", ingestion.MaxInputBytes)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
