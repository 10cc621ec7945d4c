package merge

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/model"
)

// Teams builds squad context from the squad standard table (possession share,
// team minutes), the squad possession table (touches per 90) and the
// possession-against table (opponent touches, squads prefixed "vs ").
//
// The standard table decides which squads exist. Squads missing from the
// other two keep undefined fields for what those tables would have supplied.
func Teams(standard, possession, against model.RawTable, cfg config.Teams) (map[string]model.TeamRecord, error) {
	std, err := squadCells(standard, cfg.SquadColumn, "", cfg.PossessionColumn, cfg.MinutesColumn)
	if err != nil {
		return nil, err
	}
	pos, err := squadCells(possession, cfg.SquadColumn, "", cfg.TouchesColumn, cfg.NinetiesColumn)
	if err != nil {
		return nil, err
	}
	opp, err := squadCells(against, cfg.SquadColumn, cfg.AgainstPrefix, cfg.TouchesColumn)
	if err != nil {
		return nil, err
	}

	teams := make(map[string]model.TeamRecord, len(std))
	for squad, v := range std {
		tr := model.TeamRecord{Squad: squad, Possession: v[0], Minutes: v[1]}
		if p, ok := pos[squad]; ok {
			tr.TouchesPer90 = model.Div(p[0], p[1])
		} else {
			log.Warn().Str("squad", squad).Str("table", possession.Category).Msg("squad missing")
		}
		if o, ok := opp[squad]; ok {
			tr.OppTouches = o[0]
		} else {
			log.Warn().Str("squad", squad).Str("table", against.Category).Msg("squad missing")
		}
		teams[squad] = tr
	}
	return teams, nil
}

// squadCells returns, per squad, the numeric values of cols in order.
func squadCells(raw model.RawTable, squadCol, prefix string, cols ...string) (map[string][]model.Value, error) {
	keys := HeaderKeys(raw.Header)
	idx := make([]int, len(cols))
	squadIdx := -1
	for i, k := range keys {
		if k == squadCol && squadIdx < 0 {
			squadIdx = i
		}
	}
	if squadIdx < 0 {
		return nil, fmt.Errorf("%w: %s has no %q column", ErrMissingColumn, raw.Category, squadCol)
	}
	for j, c := range cols {
		idx[j] = -1
		for i, k := range keys {
			if k == c {
				idx[j] = i
				break
			}
		}
		if idx[j] < 0 {
			return nil, fmt.Errorf("%w: %s has no %q column", ErrMissingColumn, raw.Category, c)
		}
	}

	out := make(map[string][]model.Value, len(raw.Rows))
	for _, cells := range raw.Rows {
		squad := cell(cells, squadIdx)
		if squad == "" || squad == squadCol {
			continue
		}
		squad = strings.TrimSpace(strings.TrimPrefix(squad, prefix))
		if _, dup := out[squad]; dup {
			continue
		}
		vals := make([]model.Value, len(cols))
		for j, i := range idx {
			vals[j], _ = ParseNumber(cell(cells, i))
		}
		out[squad] = vals
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, raw.Category)
	}
	return out, nil
}

// Positions maps player name to main position from a positions table. The
// first row for a name wins.
func Positions(raw model.RawTable, playerCol, positionCol string) (map[string]string, error) {
	keys := HeaderKeys(raw.Header)
	pi, qi := -1, -1
	for i, k := range keys {
		switch k {
		case playerCol:
			pi = i
		case positionCol:
			qi = i
		}
	}
	if pi < 0 || qi < 0 {
		return nil, fmt.Errorf("%w: %s needs %q and %q", ErrMissingColumn, raw.Category, playerCol, positionCol)
	}
	out := make(map[string]string, len(raw.Rows))
	for _, cells := range raw.Rows {
		name, pos := cell(cells, pi), cell(cells, qi)
		if name == "" || pos == "" {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = pos
		}
	}
	return out, nil
}
