package cmd

import (
	"strings"
	"testing"

	"github.com/pable/go-fbref-scout/internal/model"
)

func TestParseShellQuery(t *testing.T) {
	q, err := parseShellQuery([]string{"Trent", "Alexander-Arnold", "--squad", "Liverpool", "--top", "3"})
	if err != nil {
		t.Fatalf("parseShellQuery: %v", err)
	}
	if q.Name != "Trent Alexander-Arnold" {
		t.Errorf("name: got %q", q.Name)
	}
	if q.Squad != "Liverpool" || q.TopN != 3 {
		t.Errorf("flags: got squad=%q top=%d", q.Squad, q.TopN)
	}

	q, err = parseShellQuery([]string{"Rodri", "--group"})
	if err != nil {
		t.Fatalf("parseShellQuery: %v", err)
	}
	if q.Name != "Rodri --group" || q.Group != "" {
		t.Errorf("dangling flag should stay in the name: %+v", q)
	}
}

func TestParseShellQueryBadTop(t *testing.T) {
	for _, v := range []string{"three", "0", "-2"} {
		if _, err := parseShellQuery([]string{"Rodri", "--top", v}); err == nil {
			t.Errorf("--top %s: expected an error", v)
		}
	}
}

func TestFindPlayer(t *testing.T) {
	table := model.NewTable()
	add := func(name, squad, group string) {
		r := model.NewPlayerRecord(model.Identity{Name: name, Squad: squad})
		r.PositionGroup = group
		table.Records = append(table.Records, r)
	}
	add("Rodri", "Man City", "DM")
	add("Rodri", "Betis", "W")
	add("Saka", "Arsenal", "W")

	r, err := findPlayer(table, "saka", "", "")
	if err != nil || r.Squad != "Arsenal" {
		t.Fatalf("single match: %v %+v", err, r)
	}

	if _, err := findPlayer(table, "Rodri", "", ""); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguity error, got %v", err)
	}

	r, err = findPlayer(table, "Rodri", "", "dm")
	if err != nil || r.Squad != "Man City" {
		t.Errorf("group filter: %v %+v", err, r)
	}

	if _, err := findPlayer(table, "Nobody", "", ""); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}
