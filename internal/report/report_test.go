package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/model"
	"github.com/pable/go-fbref-scout/internal/similarity"
	"github.com/pable/go-fbref-scout/internal/storage"
)

func init() {
	color.NoColor = true
}

func TestBand(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{100, "ELITE"},
		{90, "ELITE"},
		{75, "GOOD"},
		{50, "AVG"},
		{10, "POOR"},
	}
	for _, tc := range cases {
		if got := Band(tc.pct); got != tc.want {
			t.Errorf("Band(%v) = %s, want %s", tc.pct, got, tc.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(model.Defined(2.25)); got != "2.2" && got != "2.3" {
		t.Errorf("FormatValue: got %s", got)
	}
	if got := FormatValue(model.Undefined()); got != "—" {
		t.Errorf("undefined: got %q", got)
	}
}

func TestPrintSimilar(t *testing.T) {
	res := &similarity.Result{
		Query:         model.Identity{Name: "Ann", Squad: "X"},
		MainPosition:  "Left-Back",
		PositionGroup: "FB",
		Traits:        []string{"Chance Creation"},
		CohortSize:    3,
		Clusters:      2,
		Matches: []similarity.Match{
			{Identity: model.Identity{Name: "Bea", Squad: "Y"}, MainPosition: "Right-Back", Similarity: 87.5},
		},
	}
	var buf bytes.Buffer
	PrintSimilar(&buf, res)
	out := buf.String()
	for _, want := range []string{"Ann (X)", "Bea", "87.5", "Chance Creation"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintProfile(t *testing.T) {
	r := model.NewPlayerRecord(model.Identity{Name: "Ann", Squad: "X"})
	r.Set("Box Defending", model.Defined(95))
	r.Set("TklPer90", model.Defined(3))
	r.Set("TklPer90_PR", model.Defined(80))

	var buf bytes.Buffer
	PrintProfile(&buf, r, []string{"Box Defending"}, []config.Section{{Name: "Defensive Play", Columns: []string{"TklPer90_PR"}}})
	out := buf.String()
	for _, want := range []string{"Box Defending", "ELITE", "Defensive Play", "TklPer90", "80.0", "3.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCohorts(t *testing.T) {
	var buf bytes.Buffer
	PrintCohorts(&buf, []storage.CohortStats{
		{Group: "CB", Players: 2, Defined: 10, Undefined: 0},
		{Group: "ST", Players: 1, Defined: 3, Undefined: 1},
	})
	if !strings.Contains(buf.String(), "(3 players in 2 cohorts)") {
		t.Errorf("missing totals:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "25.0%") {
		t.Errorf("missing undefined share:\n%s", buf.String())
	}
}

func TestPrintIssuesUsesReportLayout(t *testing.T) {
	is := storage.IssueRow{
		Identity: model.Identity{Name: "Bob", Squad: "Brentford"},
		Issue:    model.Issue{Stage: "merge", Message: "no defense row, columns undefined"},
	}
	var got bytes.Buffer
	PrintIssues(&got, []storage.IssueRow{is})

	var want bytes.Buffer
	table := newTable(&want)
	table.Header("PLAYER", "SQUAD", "STAGE", "COLUMN", "MESSAGE")
	table.Append(is.Name, is.Squad, is.Stage, is.Column, is.Message)
	table.Render()

	if !strings.HasPrefix(got.String(), want.String()) {
		t.Errorf("issues table layout differs:\n%s\nwant:\n%s", got.String(), want.String())
	}
	if !strings.HasSuffix(got.String(), "(1 issues)\n") {
		t.Errorf("missing count:\n%s", got.String())
	}
}
