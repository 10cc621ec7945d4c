package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-fbref-scout/internal/model"
	"github.com/pable/go-fbref-scout/internal/report"
	"github.com/pable/go-fbref-scout/internal/similarity"
	"github.com/pable/go-fbref-scout/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the latest run. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// session keeps the selected run's table loaded between commands.
type session struct {
	db     *storage.DB
	run    *storage.Run
	table  *model.Table
	engine *similarity.Engine
}

func (s *session) use(prefix string) error {
	run, table, err := loadRunTable(s.db, prefix)
	if err != nil {
		return err
	}
	s.run, s.table = run, table
	return nil
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	s := &session{
		db: db,
		engine: similarity.New(
			similarity.WithTemplates(cfg.Similarity.Templates),
			similarity.WithSeed(cfg.Similarity.Seed),
			similarity.WithRestarts(cfg.Similarity.Restarts),
			similarity.WithMaxIterations(cfg.Similarity.MaxIterations),
			similarity.WithDefaults(cfg.Similarity.Clusters, cfg.Similarity.TopN),
		),
	}

	cGreeting.Println("scout shell")
	if err := s.use(""); err != nil {
		cWarn.Fprintln(os.Stderr, err)
	} else {
		cMuted.Printf("run %s (%s, %d players)\n", s.run.ID, s.run.Season, s.run.Players)
	}
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("scout")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "runs":
			shellRuns(db)
		case "use":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: use <run-prefix>")
				continue
			}
			if err := s.use(args[0]); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			cMuted.Printf("run %s (%s, %d players)\n", s.run.ID, s.run.Season, s.run.Players)
		case "similar", "profile":
			if s.table == nil {
				cError.Fprintln(os.Stderr, "no run loaded; run 'scout build' first")
				continue
			}
			q, err := parseShellQuery(args)
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			if q.Name == "" {
				cError.Fprintf(os.Stderr, "usage: %s <player> [--squad S] [--group G] [--top N]\n", cmd)
				continue
			}
			if cmd == "similar" {
				shellSimilar(s, q)
			} else {
				shellProfile(s, q)
			}
		case "cohorts":
			if s.run == nil {
				cError.Fprintln(os.Stderr, "no run loaded")
				continue
			}
			stats, err := db.CohortSummary(s.run.ID)
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			report.PrintCohorts(os.Stdout, stats)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

// parseShellQuery splits "Name With Spaces --squad X --top 3" into a query.
func parseShellQuery(args []string) (similarity.Query, error) {
	var q similarity.Query
	var name []string
	for i := 0; i < len(args); i++ {
		if i+1 < len(args) {
			switch args[i] {
			case "--squad":
				i++
				q.Squad = args[i]
				continue
			case "--group":
				i++
				q.Group = args[i]
				continue
			case "--top":
				i++
				n, err := strconv.Atoi(args[i])
				if err != nil || n < 1 {
					return q, fmt.Errorf("--top wants a positive number, got %q", args[i])
				}
				q.TopN = n
				continue
			}
		}
		name = append(name, args[i])
	}
	q.Name = strings.Join(name, " ")
	return q, nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"runs", "list all stored runs"},
		{"use <run-prefix>", "switch to another run"},
		{"similar <player> [--squad S] [--top N]", "most similar players in the same group"},
		{"profile <player> [--squad S]", "trait scores and percentile ranks"},
		{"cohorts", "cohort sizes of the current run"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-42s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellRuns(db *storage.DB) {
	runs, err := db.ListRuns()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(runs) == 0 {
		cMuted.Println("No runs stored yet.")
		return
	}
	report.PrintRuns(os.Stdout, runs)
}

func shellSimilar(s *session, q similarity.Query) {
	res, err := s.engine.Similar(s.table, q)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintSimilar(os.Stdout, res)
}

func shellProfile(s *session, q similarity.Query) {
	r, err := findPlayer(s.table, q.Name, q.Squad, q.Group)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintProfile(os.Stdout, r, cfg.Profiles[r.PositionGroup], cfg.ProfileSections)
}
