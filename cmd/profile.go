package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-fbref-scout/internal/report"
)

var (
	profileSquad string
	profileGroup string
	profileRun   string
)

var profileCmd = &cobra.Command{
	Use:   "profile <player>",
	Short: "Show a player's trait scores and percentile ranks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&profileSquad, "squad", "", "squad, when the name is ambiguous")
	profileCmd.Flags().StringVar(&profileGroup, "group", "", "position group, when the player appears in several")
	profileCmd.Flags().StringVar(&profileRun, "run", "", "run id prefix (default: latest)")
}

func runProfile(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	_, table, err := loadRunTable(db, profileRun)
	if err != nil {
		return err
	}

	r, err := findPlayer(table, strings.Join(args, " "), profileSquad, profileGroup)
	if err != nil {
		return err
	}
	report.PrintProfile(os.Stdout, r, cfg.Profiles[r.PositionGroup], cfg.ProfileSections)
	return nil
}
