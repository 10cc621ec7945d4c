package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/model"
	"github.com/pable/go-fbref-scout/internal/similarity"
	"github.com/pable/go-fbref-scout/internal/storage"
)

var (
	cElite   = color.New(color.FgGreen, color.Bold)
	cGood    = color.New(color.FgGreen)
	cAverage = color.New(color.FgYellow)
	cPoor    = color.New(color.FgRed)
	cMuted   = color.New(color.Faint)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// FormatValue prints a defined value with one decimal and an undefined one
// as a dash.
func FormatValue(v model.Value) string {
	f, ok := v.Float()
	if !ok {
		return "—"
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// Band names the percentile band of pct.
func Band(pct float64) string {
	switch {
	case pct >= 90:
		return "ELITE"
	case pct >= 70:
		return "GOOD"
	case pct >= 30:
		return "AVG"
	default:
		return "POOR"
	}
}

// Shade colours a 0–100 score by band. Undefined scores are muted.
func Shade(v model.Value) string {
	f, ok := v.Float()
	if !ok {
		return cMuted.Sprint("—")
	}
	s := strconv.FormatFloat(f, 'f', 1, 64)
	switch Band(f) {
	case "ELITE":
		return cElite.Sprint(s)
	case "GOOD":
		return cGood.Sprint(s)
	case "AVG":
		return cAverage.Sprint(s)
	default:
		return cPoor.Sprint(s)
	}
}

// PrintSimilar prints the header and ranked peers of a similarity query.
func PrintSimilar(w io.Writer, res *similarity.Result) {
	fmt.Fprintf(w, "\nPlayer: %s  |  Position: %s (%s)  |  Cohort: %d  |  Clusters: %d\n",
		res.Query, res.MainPosition, res.PositionGroup, res.CohortSize, res.Clusters)
	fmt.Fprintf(w, "Traits: %s\n\n", strings.Join(res.Traits, ", "))

	table := newTable(w)
	table.Header("#", "PLAYER", "SQUAD", "POSITION", "SIMILARITY", "CLUSTER")
	for i, m := range res.Matches {
		cluster := strconv.Itoa(m.Cluster)
		if m.Cluster == res.QueryCluster {
			cluster += "*"
		}
		table.Append(
			strconv.Itoa(i+1),
			m.Name,
			m.Squad,
			m.MainPosition,
			fmt.Sprintf("%.1f", m.Similarity),
			cluster,
		)
	}
	table.Render()
}

// PrintProfile prints a player's profile traits followed by each section's
// percentile ranks next to the underlying values.
func PrintProfile(w io.Writer, r *model.PlayerRecord, profile []string, sections []config.Section) {
	minutes := FormatValue(r.Minutes())
	fmt.Fprintf(w, "\nPlayer: %s  |  Position: %s (%s)  |  Minutes: %s  |  Age: %s\n\n",
		r.Identity, r.MainPosition, r.PositionGroup, minutes, FormatValue(r.Get(model.ColAge)))

	if len(profile) > 0 {
		table := newTable(w)
		table.Header("TRAIT", "SCORE", "BAND")
		for _, col := range profile {
			table.Append(col, Shade(r.Get(col)), band(r.Get(col)))
		}
		table.Render()
	}

	for _, s := range sections {
		fmt.Fprintf(w, "\n%s\n", s.Name)
		table := newTable(w)
		table.Header("METRIC", "VALUE", "PERCENTILE")
		for _, col := range s.Columns {
			base := strings.TrimSuffix(col, model.PercentileSuffix)
			table.Append(base, FormatValue(r.Get(base)), Shade(r.Get(col)))
		}
		table.Render()
	}
}

func band(v model.Value) string {
	f, ok := v.Float()
	if !ok {
		return ""
	}
	return Band(f)
}

// PrintCohorts prints per-group sizes and value coverage.
func PrintCohorts(w io.Writer, stats []storage.CohortStats) {
	table := newTable(w)
	table.Header("GROUP", "PLAYERS", "DEFINED", "UNDEFINED", "UNDEF%")
	total := 0
	for _, s := range stats {
		pct := "—"
		if n := s.Defined + s.Undefined; n > 0 {
			pct = fmt.Sprintf("%.1f%%", float64(s.Undefined)/float64(n)*100)
		}
		table.Append(s.Group, strconv.Itoa(s.Players), strconv.Itoa(s.Defined), strconv.Itoa(s.Undefined), pct)
		total += s.Players
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d players in %d cohorts)\n", total, len(stats))
}

// PrintRuns lists stored runs.
func PrintRuns(w io.Writer, runs []storage.Run) {
	table := newTable(w)
	table.Header("RUN", "SEASON", "CREATED", "PLAYERS", "COHORTS", "COLUMNS")
	for _, r := range runs {
		table.Append(
			shortID(r.ID),
			r.Season,
			r.CreatedAt.Local().Format(time.DateTime),
			strconv.Itoa(r.Players),
			strconv.Itoa(r.Cohorts),
			strconv.Itoa(r.Columns),
		)
	}
	table.Render()
}

// PrintIssues lists per-record issues.
func PrintIssues(w io.Writer, issues []storage.IssueRow) {
	table := newTable(w)
	table.Header("PLAYER", "SQUAD", "STAGE", "COLUMN", "MESSAGE")
	for _, is := range issues {
		table.Append(is.Name, is.Squad, is.Stage, is.Column, is.Message)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d issues)\n", len(issues))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
