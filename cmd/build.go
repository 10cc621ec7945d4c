package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-fbref-scout/internal/metrics"
	"github.com/pable/go-fbref-scout/internal/pipeline"
	"github.com/pable/go-fbref-scout/internal/report"
	"github.com/pable/go-fbref-scout/internal/storage"
)

var (
	buildDataDir    string
	buildMetricsOut string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the pipeline over a directory of FBRef CSV exports and store the result",
	Long: `Read the per-category player tables, the squad tables and the optional
positions table from --data (files may be plain, .zst or .gz), run every
stage, and store the scored cohorts as a new run.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildDataDir, "data", "", "input directory (default: inputs.dir from config)")
	buildCmd.Flags().StringVar(&buildMetricsOut, "metrics-out", "", "write run metrics in Prometheus text format to this file")
}

func runBuild(cmd *cobra.Command, args []string) error {
	dir := buildDataDir
	if dir == "" {
		dir = cfg.Inputs.Dir
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Building from %s...\n", dir)
	rec := metrics.NewRecorder()
	res, err := pipeline.Build(cmd.Context(), dir, cfg, rec)
	if err != nil {
		return err
	}

	run := storage.Run{ID: res.RunID, Season: res.Season, CreatedAt: res.CreatedAt}
	if err := db.SaveRun(run, res.Table, res.Issues()); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if buildMetricsOut != "" {
		if err := rec.WriteTextfile(buildMetricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	stats, err := db.CohortSummary(run.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nRun %s  |  Season: %s  |  Metrics ranked: %d\n\n", run.ID, run.Season, len(res.Metrics))
	report.PrintCohorts(os.Stdout, stats)
	return nil
}
