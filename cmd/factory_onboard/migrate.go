package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/factory-onboarding/internal/db"
)

var migrateDBURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the run and artifact tables",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDBURL, "db-url", "", "PostgreSQL URL (falls back to "+databaseURLEnv+")")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	dbURL := resolveDatabaseURL(migrateDBURL, cfg)
	if dbURL == "" {
		return fmt.Errorf("a database URL is required: use --db-url or %s", databaseURLEnv)
	}

	database, err := db.Connect(cmd.Context(), dbURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(cmd.Context()); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "✓ schema is up to date")
	return err
}
