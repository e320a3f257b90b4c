package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/factory-onboarding/internal/onboarding"
)

var defaultConfigCmd = &cobra.Command{
	Use:   "default-config",
	Short: "Print the built-in default factory used as the fallback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeJSON(cmd, onboarding.DefaultFactory())
	},
}

func init() {
	rootCmd.AddCommand(defaultConfigCmd)
}
