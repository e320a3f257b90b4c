package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/factory-onboarding/internal/ids"
)

var extractIDsInput string

var extractIDsCmd = &cobra.Command{
	Use:   "extract-ids",
	Short: "List the machine and job IDs named explicitly in a description",
	Long: `Scans a factory description for tokens shaped like machine IDs (M1, M2, ...) and
job IDs (J1, J2, ...). No model is called. Output is JSON.`,
	RunE: runExtractIDs,
}

func init() {
	extractIDsCmd.Flags().StringVarP(&extractIDsInput, "in", "i", "", "Path to the factory description (\"-\" or empty for stdin)")
	rootCmd.AddCommand(extractIDsCmd)
}

func runExtractIDs(cmd *cobra.Command, _ []string) error {
	text, _, err := readDescription(cmd.Context(), extractIDsInput, "", cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read factory description: %w", err)
	}
	return writeJSON(cmd, ids.ExtractExplicitIDs(text))
}
