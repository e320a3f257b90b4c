package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/factory-onboarding/internal/observability"
	"github.com/jonathan/factory-onboarding/internal/schemas"
	"github.com/jonathan/factory-onboarding/internal/types"
)

var validateConfigInput string

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Check a FactoryConfig JSON document",
	Long: `Validates a FactoryConfig against its JSON Schema and then against the config
invariants (unique IDs, known machines in routings, positive durations and due
times within the modeled day). Prints the config on success.`,
	RunE: runValidateConfig,
}

func init() {
	validateConfigCmd.Flags().StringVarP(&validateConfigInput, "in", "i", "", "Path to the FactoryConfig JSON (\"-\" or empty for stdin)")
	rootCmd.AddCommand(validateConfigCmd)
}

func runValidateConfig(cmd *cobra.Command, _ []string) error {
	data, err := readJSONInput(cmd, validateConfigInput)
	if err != nil {
		return err
	}

	if err := schemas.ValidateNamed(schemas.FactoryConfig, data); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	cfg, err := types.DecodeFactoryConfig(data)
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintFactoryConfig(cfg)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ valid: %d machines, %d jobs\n", len(cfg.Machines), len(cfg.Jobs))
	return err
}
