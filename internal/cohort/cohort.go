// Package cohort assigns position groups and splits the player table into
// positional, minutes-filtered peer populations.
package cohort

import (
	"github.com/rs/zerolog/log"

	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/model"
)

// Goalkeeper is the main position given to records whose FBRef label marks
// them as goalkeepers.
const Goalkeeper = "Goalkeeper"

// Cohort is one position group's qualifying records.
type Cohort struct {
	Group string
	Table *model.Table
}

// Assign returns a new table with MainPosition and PositionGroup set on every
// record. The main position comes from positions (by player name) when
// present, otherwise from the FBRef position label. Positions outside every
// configured group fall into model.GroupOther.
func Assign(in *model.Table, positions map[string]string, cfg config.Cohort) *model.Table {
	out := in.Clone()
	for _, r := range out.Records {
		switch {
		case cfg.GoalkeeperLabel != "" && r.Pos == cfg.GoalkeeperLabel:
			r.MainPosition = Goalkeeper
		case positions[r.Name] != "":
			r.MainPosition = positions[r.Name]
		default:
			r.MainPosition = r.Pos
		}
		r.PositionGroup = cfg.GroupOf(r.MainPosition)
		if r.PositionGroup == "" {
			r.PositionGroup = model.GroupOther
		}
	}
	return out
}

// MinutesShare is Min / TeamMins, undefined when either is.
func MinutesShare(r *model.PlayerRecord) model.Value {
	return model.Div(r.Minutes(), r.Get(model.ColTeamMinutes))
}

// Qualifies reports whether r played at least minShare of its team's minutes.
// An undefined share never qualifies.
func Qualifies(r *model.PlayerRecord, minShare float64) bool {
	share, ok := MinutesShare(r).Float()
	return ok && share >= minShare
}

// Build filters in by the minutes threshold, keeps the highest-minutes row
// per (player, group), and splits the survivors into cohorts in configured
// group order followed by Other. Empty groups are omitted. Every cohort owns
// cloned records.
func Build(in *model.Table, cfg config.Cohort) []Cohort {
	best := make(map[[2]string]*model.PlayerRecord)
	var order [][2]string
	excluded := 0
	for _, r := range in.Records {
		if !Qualifies(r, cfg.MinMinutesShare) {
			excluded++
			continue
		}
		key := [2]string{r.Name, r.PositionGroup}
		cur, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = r
			continue
		}
		if preferred(r, cur) {
			best[key] = r
		}
	}

	byGroup := make(map[string]*model.Table)
	for _, key := range order {
		r := best[key]
		t, ok := byGroup[r.PositionGroup]
		if !ok {
			t = in.CloneColumns()
			byGroup[r.PositionGroup] = t
		}
		t.Records = append(t.Records, r.Clone())
	}

	groups := append(append([]string(nil), cfg.Order...), model.GroupOther)
	emitted := make(map[string]bool, len(groups))
	var out []Cohort
	for _, g := range groups {
		t, ok := byGroup[g]
		if !ok || emitted[g] {
			continue
		}
		emitted[g] = true
		t.SortByIdentity()
		out = append(out, Cohort{Group: g, Table: t})
		log.Debug().Str("group", g).Int("size", len(t.Records)).Msg("cohort built")
	}
	log.Debug().Int("excluded", excluded).Float64("min_share", cfg.MinMinutesShare).Msg("minutes filter")
	return out
}

// preferred reports whether a should replace b as the kept row: more
// minutes wins, then the alphabetically first squad.
func preferred(a, b *model.PlayerRecord) bool {
	am, aok := a.Minutes().Float()
	bm, bok := b.Minutes().Float()
	switch {
	case aok && !bok:
		return true
	case !aok && bok:
		return false
	case am != bm:
		return am > bm
	}
	return a.Squad < b.Squad
}

// Combine concatenates cohorts into one table, one row per (player, group).
func Combine(cs []Cohort) *model.Table {
	out := model.NewTable()
	for _, c := range cs {
		for _, col := range c.Table.Columns {
			out.AddColumn(col.Name, col.Kind)
		}
		out.Records = append(out.Records, c.Table.Records...)
	}
	return out
}
