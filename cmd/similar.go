package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pable/go-fbref-scout/internal/report"
	"github.com/pable/go-fbref-scout/internal/similarity"
)

var (
	similarSquad    string
	similarGroup    string
	similarClusters int
	similarTop      int
	similarRun      string
	similarJSON     bool
)

var similarCmd = &cobra.Command{
	Use:   "similar <player>",
	Short: "Find the players most similar to a player within their position group",
	Long: `Compare a player against every qualifying player of the same position group
on that group's template traits. Similarity is 100 for an identical profile
and 0 for the most distant cohort member.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().StringVar(&similarSquad, "squad", "", "squad, when the name is ambiguous")
	similarCmd.Flags().StringVar(&similarGroup, "group", "", "position group, when the player appears in several")
	similarCmd.Flags().IntVar(&similarClusters, "clusters", 0, "k-means clusters (default: similarity.clusters)")
	similarCmd.Flags().IntVar(&similarTop, "top", 0, "number of results (default: similarity.top_n)")
	similarCmd.Flags().StringVar(&similarRun, "run", "", "run id prefix (default: latest)")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "print the result as JSON")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	_, table, err := loadRunTable(db, similarRun)
	if err != nil {
		return err
	}

	engine := similarity.New(
		similarity.WithTemplates(cfg.Similarity.Templates),
		similarity.WithSeed(cfg.Similarity.Seed),
		similarity.WithRestarts(cfg.Similarity.Restarts),
		similarity.WithMaxIterations(cfg.Similarity.MaxIterations),
		similarity.WithDefaults(cfg.Similarity.Clusters, cfg.Similarity.TopN),
	)
	res, err := engine.Similar(table, similarity.Query{
		Name:     strings.Join(args, " "),
		Squad:    similarSquad,
		Group:    similarGroup,
		Clusters: similarClusters,
		TopN:     similarTop,
	})
	if err != nil {
		return err
	}

	if similarJSON {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	}
	report.PrintSimilar(os.Stdout, res)
	return nil
}
