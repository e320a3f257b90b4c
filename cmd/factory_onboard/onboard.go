package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/factory-onboarding/internal/config"
	"github.com/jonathan/factory-onboarding/internal/db"
	"github.com/jonathan/factory-onboarding/internal/ingestion"
	"github.com/jonathan/factory-onboarding/internal/observability"
	"github.com/jonathan/factory-onboarding/internal/onboarding"
	"github.com/jonathan/factory-onboarding/internal/types"
)

var (
	onboardInput       string
	onboardURL         string
	onboardPasses      int
	onboardMaxParallel int
	onboardAPIKey      string
	onboardProvider    string
	onboardTier        string
	onboardOutput      string
	onboardJSON        bool
	onboardDBURL       string
	onboardProgress    bool
	onboardSaveInput   string
	onboardStrict      bool
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Onboard a factory description into a validated factory config",
	Long: `Runs explicit ID extraction, coarse and fine model extraction, normalization and
the coverage audit on a factory description. With --passes greater than one the
passes run in parallel and are compared for disagreement.

The description is read from --in, --url or stdin. A config is always produced;
when extraction fails the default factory is returned and the outcome is FALLBACK.`,
	RunE: runOnboard,
}

func init() {
	onboardCmd.Flags().StringVarP(&onboardInput, "in", "i", "", "Path to the factory description (\"-\" or empty for stdin)")
	onboardCmd.Flags().StringVar(&onboardURL, "url", "", "URL of a page describing the factory")
	onboardCmd.Flags().IntVar(&onboardPasses, "passes", 1, "Number of independent extraction passes")
	onboardCmd.Flags().IntVar(&onboardMaxParallel, "max-parallel", onboarding.DefaultMaxParallel, "Maximum passes running at once")
	onboardCmd.Flags().StringVar(&onboardAPIKey, "api-key", "", "Gemini API key (overrides "+apiKeyEnv+")")
	onboardCmd.Flags().StringVar(&onboardProvider, "provider", "", "LLM provider: gemini or genai")
	onboardCmd.Flags().StringVar(&onboardTier, "tier", "", "Model tier: lite, standard or advanced")
	onboardCmd.Flags().StringVarP(&onboardOutput, "out", "o", "", "Write the onboarding result JSON to this file")
	onboardCmd.Flags().BoolVar(&onboardJSON, "json", false, "Print the result as JSON instead of formatted text")
	onboardCmd.Flags().StringVar(&onboardDBURL, "db-url", "", "PostgreSQL URL for storing run artifacts")
	onboardCmd.Flags().BoolVar(&onboardProgress, "progress", false, "Print stage progress while running")
	onboardCmd.Flags().StringVar(&onboardSaveInput, "save-input", "", "Directory to write the cleaned description and its metadata")
	onboardCmd.Flags().BoolVar(&onboardStrict, "strict", false, "Exit with an error when the default factory had to be used")

	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	applyOnboardFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Passes < 1 {
		return fmt.Errorf("--passes must be at least 1")
	}

	text, meta, err := readDescription(ctx, cfg.Input, cfg.InputURL, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read factory description: %w", err)
	}
	logger.Debug("description loaded",
		zap.String("source", meta.Source),
		zap.String("location", meta.Location),
		zap.Int("chars", meta.Chars),
		zap.String("hash", meta.Hash))

	if onboardSaveInput != "" {
		if err := ingestion.WriteOutput(onboardSaveInput, text, meta); err != nil {
			return err
		}
	}

	apiKey, err := resolveAPIKey(onboardAPIKey, cfg)
	if err != nil {
		return err
	}
	caller, closeClient, err := newStructuredCaller(ctx, cfg, apiKey)
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	opts := onboarding.Options{
		Caller:      caller,
		Logger:      logger,
		MaxParallel: cfg.MaxParallel,
	}

	printer := observability.NewPrinter(out)
	if onboardProgress {
		progress := observability.NewPrinter(cmd.ErrOrStderr())
		opts.OnProgress = progress.PrintProgress
	}

	if dbURL := resolveDatabaseURL(onboardDBURL, cfg); dbURL != "" {
		database, err := db.Connect(ctx, dbURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		opts.Sink = database
	}

	service, err := onboarding.NewService(opts)
	if err != nil {
		return err
	}

	result := service.OnboardMultiPass(ctx, text, cfg.Passes)

	if onboardOutput != "" {
		if err := writeJSONFile(onboardOutput, result); err != nil {
			return err
		}
		logger.Info("result written", zap.String("path", onboardOutput))
	}

	if onboardJSON {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else {
		printer.PrintResult(result)
	}

	if onboardStrict && result.Outcome == types.OutcomeFallback {
		return fmt.Errorf("onboarding fell back to the default factory (%s)", result.ErrorCode)
	}
	return nil
}

// applyOnboardFlags overrides config-file values with flags the user set explicitly
func applyOnboardFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("in") {
		cfg.Input = onboardInput
		if cfg.Input == "-" {
			cfg.Input = ""
		}
		cfg.InputURL = ""
	}
	if flags.Changed("url") {
		cfg.InputURL = onboardURL
		if !flags.Changed("in") {
			cfg.Input = ""
		}
	}
	if flags.Changed("passes") {
		cfg.Passes = onboardPasses
	}
	if flags.Changed("max-parallel") {
		cfg.MaxParallel = onboardMaxParallel
	}
	if flags.Changed("provider") {
		cfg.Provider = onboardProvider
	}
	if flags.Changed("tier") {
		cfg.Tier = onboardTier
	}
	cfg.Verbose = cfg.Verbose || verbose
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
