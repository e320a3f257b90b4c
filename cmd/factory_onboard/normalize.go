package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/factory-onboarding/internal/onboarding"
	"github.com/jonathan/factory-onboarding/internal/types"
)

var normalizeInput string

// normalizeOutput mirrors the /normalize endpoint response
type normalizeOutput struct {
	Config   *types.FactoryConfig `json:"config"`
	Warnings []string             `json:"warnings"`
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Repair and validate a raw factory config without calling a model",
	Long: `Reads a RawFactoryConfig JSON document (the shape the fine extraction stage
produces), applies the deterministic repairs and prints the resulting
FactoryConfig with any repair warnings.`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeInput, "in", "i", "", "Path to the raw config JSON (\"-\" or empty for stdin)")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	data, err := readJSONInput(cmd, normalizeInput)
	if err != nil {
		return err
	}

	raw, err := types.DecodeRawFactoryConfig(data)
	if err != nil {
		return fmt.Errorf("invalid raw config: %w", err)
	}

	cfg, warnings, err := onboarding.Assemble(raw)
	if err != nil {
		return err
	}
	if warnings == nil {
		warnings = []string{}
	}
	return writeJSON(cmd, normalizeOutput{Config: cfg, Warnings: warnings})
}
