package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-fbref-scout/internal/report"
)

var issuesRun string

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List per-record data issues raised during a run",
	Args:  cobra.NoArgs,
	RunE:  runIssues,
}

func init() {
	issuesCmd.Flags().StringVar(&issuesRun, "run", "", "run id prefix (default: latest)")
}

func runIssues(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := resolveRun(db, issuesRun)
	if err != nil {
		return err
	}
	issues, err := db.Issues(run.ID)
	if err != nil {
		return fmt.Errorf("list issues: %w", err)
	}
	if len(issues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues recorded.")
		return nil
	}
	report.PrintIssues(os.Stdout, issues)
	return nil
}
