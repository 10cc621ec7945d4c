package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-fbref-scout/internal/report"
)

var cohortsRun string

var cohortsCmd = &cobra.Command{
	Use:   "cohorts",
	Short: "Show per-position-group sizes and value coverage for a run",
	Args:  cobra.NoArgs,
	RunE:  runCohorts,
}

func init() {
	cohortsCmd.Flags().StringVar(&cohortsRun, "run", "", "run id prefix (default: latest)")
}

func runCohorts(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := resolveRun(db, cohortsRun)
	if err != nil {
		return err
	}
	stats, err := db.CohortSummary(run.ID)
	if err != nil {
		return fmt.Errorf("cohort summary: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\nRun %s  |  Season: %s\n\n", run.ID, run.Season)
	report.PrintCohorts(os.Stdout, stats)
	return nil
}
