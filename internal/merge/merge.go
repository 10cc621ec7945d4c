// Package merge joins the per-category player tables into one wide table
// keyed by (player, squad), and builds the squad context used downstream.
package merge

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/model"
)

// Stage tags issues raised by this package.
const Stage = "merge"

var (
	ErrMissingTable  = errors.New("missing table")
	ErrEmptyTable    = errors.New("empty table")
	ErrMissingColumn = errors.New("missing column")
	ErrMisaligned    = errors.New("tables misaligned")
	ErrNoPrimary     = errors.New("no primary category")
)

// HeaderKeys disambiguates repeated header names by occurrence: the first
// "Cmp" stays "Cmp", later ones become "Cmp.1", "Cmp.2".
func HeaderKeys(header []string) []string {
	seen := make(map[string]int, len(header))
	keys := make([]string, len(header))
	for i, h := range header {
		n := seen[h]
		seen[h] = n + 1
		if n == 0 {
			keys[i] = h
		} else {
			keys[i] = h + "." + strconv.Itoa(n)
		}
	}
	return keys
}

// ParseNumber coerces one raw cell. Thousands separators are stripped. An
// empty cell is undefined; ok is false only when a non-empty cell could not
// be parsed.
func ParseNumber(cell string) (v model.Value, ok bool) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return model.Undefined(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Undefined(), false
	}
	return model.Defined(f), true
}

type target struct {
	idx  int
	dest string
	kind model.ColumnKind
}

type text int

const (
	textNone text = iota
	textNation
	textPos
	textComp
	textAge
)

// plan is the column layout of one category table.
type plan struct {
	cat       config.Category
	playerIdx int
	squadIdx  int
	texts     map[int]text
	targets   []target
}

type row struct {
	id    model.Identity
	cells []string
}

// Players merges tables (by category name) into one table. Every configured
// category must be present and non-empty. The primary category decides which
// identities exist; other categories are joined on the exact identity.
func Players(tables map[string]model.RawTable, cfg config.Merge) (*model.Table, error) {
	var primary *config.Category
	for i := range cfg.Categories {
		if cfg.Categories[i].Primary {
			primary = &cfg.Categories[i]
			break
		}
	}
	if primary == nil {
		return nil, ErrNoPrimary
	}

	plans := make([]plan, 0, len(cfg.Categories))
	rows := make(map[string][]row, len(cfg.Categories))
	dupes := make(map[string][]model.Identity)
	for _, cat := range cfg.Categories {
		raw, ok := tables[cat.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, cat.Name)
		}
		p, err := newPlan(raw, cat, cfg)
		if err != nil {
			return nil, err
		}
		rs, dup := identityRows(raw, p, cfg.PlayerColumn)
		if len(rs) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyTable, cat.Name)
		}
		plans = append(plans, p)
		rows[cat.Name] = rs
		dupes[cat.Name] = dup
	}

	out := model.NewTable()
	for _, p := range plans {
		for _, tg := range p.targets {
			out.AddColumn(tg.dest, tg.kind)
		}
	}

	byID := make(map[model.Identity]*model.PlayerRecord)
	for _, r := range rows[primary.Name] {
		rec := model.NewPlayerRecord(r.id)
		byID[r.id] = rec
		out.Records = append(out.Records, rec)
	}

	for _, p := range plans {
		rs := rows[p.cat.Name]
		if cfg.Strict && !p.cat.Primary {
			if err := checkAligned(rows[primary.Name], rs, p.cat.Name); err != nil {
				return nil, err
			}
		}
		present := make(map[model.Identity]bool, len(rs))
		dropped := 0
		for _, r := range rs {
			rec, ok := byID[r.id]
			if !ok {
				dropped++
				log.Warn().Str("category", p.cat.Name).Str("player", r.id.String()).
					Msg("identity absent from primary table, dropped")
				continue
			}
			present[r.id] = true
			fill(rec, p, r.cells)
		}
		for _, id := range dupes[p.cat.Name] {
			if rec, ok := byID[id]; ok {
				rec.AddIssue(Stage, "", fmt.Sprintf("duplicate %s row ignored", p.cat.Name))
			}
		}
		if p.cat.Primary {
			continue
		}
		missing := 0
		for _, rec := range out.Records {
			if !present[rec.Identity] {
				missing++
				rec.AddIssue(Stage, "", fmt.Sprintf("no %s row, columns undefined", p.cat.Name))
			}
		}
		if dropped > 0 || missing > 0 {
			log.Info().Str("category", p.cat.Name).Int("dropped", dropped).Int("missing", missing).
				Msg("join mismatches")
		}
	}

	log.Debug().Int("records", len(out.Records)).Int("columns", len(out.Columns)).Msg("merged player tables")
	return out, nil
}

func newPlan(raw model.RawTable, cat config.Category, cfg config.Merge) (plan, error) {
	keys := HeaderKeys(raw.Header)
	p := plan{cat: cat, playerIdx: -1, squadIdx: -1, texts: make(map[int]text)}
	ignore := make(map[string]bool, len(cfg.Ignore)+len(cat.Ignore))
	for _, k := range cfg.Ignore {
		ignore[k] = true
	}
	for _, k := range cat.Ignore {
		ignore[k] = true
	}
	rates := make(map[string]bool, len(cat.Rates))
	for _, k := range cat.Rates {
		rates[k] = true
	}
	meta := make(map[string]bool, len(cat.Meta))
	for _, k := range cat.Meta {
		meta[k] = true
	}

	for i, key := range keys {
		switch {
		case key == cfg.PlayerColumn:
			p.playerIdx = i
			continue
		case key == cfg.SquadColumn:
			p.squadIdx = i
			continue
		}
		if cat.Primary {
			if t := textField(key, cfg); t != textNone {
				p.texts[i] = t
				continue
			}
		}
		if dest, ok := cat.Columns[key]; ok {
			kind := model.KindCount
			switch {
			case meta[key]:
				kind = model.KindMeta
			case rates[key]:
				kind = model.KindRate
			}
			p.targets = append(p.targets, target{idx: i, dest: dest, kind: kind})
			continue
		}
		if ignore[key] {
			continue
		}
		p.targets = append(p.targets, target{idx: i, dest: cat.Name + ":" + key, kind: model.KindAlias})
	}
	if p.playerIdx < 0 {
		return p, fmt.Errorf("%w: %s has no %q column", ErrMissingColumn, cat.Name, cfg.PlayerColumn)
	}
	if p.squadIdx < 0 {
		return p, fmt.Errorf("%w: %s has no %q column", ErrMissingColumn, cat.Name, cfg.SquadColumn)
	}

	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	var missing []string
	for k := range cat.Columns {
		if !present[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return p, fmt.Errorf("%w: %s has no %s", ErrMissingColumn, cat.Name, strings.Join(quoteAll(missing), ", "))
	}
	return p, nil
}

func quoteAll(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strconv.Quote(k)
	}
	return out
}

func textField(key string, cfg config.Merge) text {
	switch key {
	case "":
		return textNone
	case cfg.NationColumn:
		return textNation
	case cfg.PositionColumn:
		return textPos
	case cfg.CompColumn:
		return textComp
	case cfg.AgeColumn:
		return textAge
	}
	return textNone
}

// identityRows extracts and sorts the rows of one table, dropping rows with
// no player and repeated header rows. Repeated identities keep the first row
// and are reported in dup.
func identityRows(raw model.RawTable, p plan, headerLabel string) (rows []row, dup []model.Identity) {
	seen := make(map[model.Identity]bool, len(raw.Rows))
	for _, cells := range raw.Rows {
		name := cell(cells, p.playerIdx)
		if name == "" || name == headerLabel {
			continue
		}
		id := model.Identity{Name: name, Squad: cell(cells, p.squadIdx)}
		if seen[id] {
			dup = append(dup, id)
			continue
		}
		seen[id] = true
		rows = append(rows, row{id: id, cells: cells})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].id.Less(rows[j].id) })
	return rows, dup
}

func fill(rec *model.PlayerRecord, p plan, cells []string) {
	for idx, t := range p.texts {
		v := cell(cells, idx)
		switch t {
		case textNation:
			rec.Nation = v
		case textPos:
			rec.Pos = v
		case textComp:
			rec.Comp = v
		case textAge:
			rec.AgeText = v
		}
	}
	for _, tg := range p.targets {
		raw := cell(cells, tg.idx)
		v, ok := ParseNumber(raw)
		if !ok {
			rec.AddIssue(Stage, tg.dest, fmt.Sprintf("unparseable value %q", raw))
		}
		rec.Set(tg.dest, v)
	}
}

func checkAligned(primary, other []row, category string) error {
	if len(primary) != len(other) {
		return fmt.Errorf("%w: %s has %d rows, primary has %d", ErrMisaligned, category, len(other), len(primary))
	}
	for i := range primary {
		if primary[i].id != other[i].id {
			return fmt.Errorf("%w: %s row %d is %s, primary has %s",
				ErrMisaligned, category, i, other[i].id, primary[i].id)
		}
	}
	return nil
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}
