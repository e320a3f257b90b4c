package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/factory-onboarding/internal/db"
	"github.com/jonathan/factory-onboarding/internal/observability"
)

var (
	runsDBURL string
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored onboarding runs or show one run's result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDBURL, "db-url", "", "PostgreSQL URL (falls back to "+databaseURLEnv+")")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Print JSON instead of formatted text")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	var runID uuid.UUID
	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", args[0], err)
		}
		runID = id
	}
	if runsLimit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	dbURL := resolveDatabaseURL(runsDBURL, cfg)
	if dbURL == "" {
		return fmt.Errorf("a database URL is required: use --db-url or %s", databaseURLEnv)
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if runID == uuid.Nil {
		runs, err := database.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}
		if runsJSON {
			return writeJSON(cmd, runs)
		}
		return printRuns(cmd, runs)
	}

	result, err := database.GetResult(ctx, runID)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("run %s has no stored result", runID)
	}
	if runsJSON {
		return writeJSON(cmd, result)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintResult(result)
	return nil
}

func printRuns(cmd *cobra.Command, runs []db.Run) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tPASSES\tSTATUS\tERROR\tCREATED")
	for _, r := range runs {
		code := r.ErrorCode
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", r.ID, r.Passes, r.Status, code, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
