package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-fbref-scout/internal/report"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List all stored runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs stored yet. Run 'scout build --data <dir>' to add one.")
		return nil
	}
	report.PrintRuns(os.Stdout, runs)
	return nil
}
