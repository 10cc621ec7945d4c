package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropForce bool
	dropRun   string
)

// dropCmd deletes the run database file, or a single run.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the run database or a single run",
	Long:  "Permanently delete the SQLite run database, or only the run selected by --run. Re-run 'scout build' afterwards to rebuild.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().StringVar(&dropRun, "run", "", "delete only the run with this id prefix")
}

func runDrop(cmd *cobra.Command, args []string) error {
	target := dbPath
	if dropRun != "" {
		target = "run " + dropRun + " in " + dbPath
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", target)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	if dropRun != "" {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		run, err := resolveRun(db, dropRun)
		if err != nil {
			return err
		}
		if err := db.DeleteRun(run.ID); err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Deleted run: %s\n", run.ID)
		return nil
	}

	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
