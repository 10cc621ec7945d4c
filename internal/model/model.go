package model

import (
	"sort"
	"strings"
)

// Well-known column names shared across pipeline stages.
const (
	ColMinutes       = "Min"
	ColAge           = "Age"
	ColTeamPoss      = "AvgTeamPoss"
	ColTeamMinutes   = "TeamMins"
	ColTeamTouches   = "TeamTouches90"
	ColOppTouches    = "OppTouches"
	Per90Suffix      = "Per90"
	AdjustedPrefix   = "pAdj"
	PercentileSuffix = "_PR"
	GroupOther       = "Other"
)

// Per90Name returns the per-90 column name for a raw column.
func Per90Name(raw string) string { return raw + Per90Suffix }

// AdjustedName returns the possession-adjusted column name for a raw column.
func AdjustedName(raw string) string { return AdjustedPrefix + raw + Per90Suffix }

// PercentileName returns the percentile-rank column name for a column.
func PercentileName(col string) string { return col + PercentileSuffix }

// Identity is the (player, squad) join key. A player who moved clubs mid-season
// has one Identity per squad.
type Identity struct {
	Name  string `json:"name"`
	Squad string `json:"squad"`
}

// Key returns a stable string form of the identity.
func (id Identity) Key() string { return id.Name + "\x00" + id.Squad }

func (id Identity) String() string {
	if id.Squad == "" {
		return id.Name
	}
	return id.Name + " (" + id.Squad + ")"
}

// Less orders identities by name, then squad.
func (id Identity) Less(o Identity) bool {
	if id.Name != o.Name {
		return id.Name < o.Name
	}
	return id.Squad < o.Squad
}

// ColumnKind classifies a numeric column by how it was produced.
type ColumnKind int

const (
	KindMeta ColumnKind = iota
	KindCount
	KindRate
	KindAlias
	KindPer90
	KindContext
	KindAdjusted
	KindDerived
	KindPercentile
	KindComposite
)

var kindNames = map[ColumnKind]string{
	KindMeta:       "meta",
	KindCount:      "count",
	KindRate:       "rate",
	KindAlias:      "alias",
	KindPer90:      "per90",
	KindContext:    "context",
	KindAdjusted:   "adjusted",
	KindDerived:    "derived",
	KindPercentile: "percentile",
	KindComposite:  "composite",
}

func (k ColumnKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "?"
}

// ParseColumnKind is the inverse of ColumnKind.String. Unknown names map to KindMeta.
func ParseColumnKind(s string) ColumnKind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindMeta
}

// Column describes one numeric column of a Table.
type Column struct {
	Name string
	Kind ColumnKind
}

// Issue is a stage-local, per-record problem that does not abort the run.
type Issue struct {
	Stage   string
	Column  string
	Message string
}

func (i Issue) String() string {
	if i.Column == "" {
		return i.Stage + ": " + i.Message
	}
	return i.Stage + ": " + i.Column + ": " + i.Message
}

// RawTable is one ingested category table: a header row plus string cells.
type RawTable struct {
	Category string
	Header   []string
	Rows     [][]string
}

// TeamRecord holds the squad-level context used by the Context Adjuster.
type TeamRecord struct {
	Squad        string
	Minutes      Value
	Possession   Value // 0–100
	TouchesPer90 Value
	OppTouches   Value
}

// PlayerRecord is one row of the wide player table.
type PlayerRecord struct {
	Identity
	Nation        string
	Pos           string // FBRef position label, e.g. "DF,MF"
	Comp          string
	AgeText       string // raw "years-days" cell, parsed by the rates stage
	MainPosition  string
	PositionGroup string

	Stats  map[string]Value
	Issues []Issue
}

// NewPlayerRecord returns an empty record for id.
func NewPlayerRecord(id Identity) *PlayerRecord {
	return &PlayerRecord{Identity: id, Stats: make(map[string]Value)}
}

// Get returns the named stat; missing stats are undefined.
func (r *PlayerRecord) Get(col string) Value { return r.Stats[col] }

// Set stores a stat.
func (r *PlayerRecord) Set(col string, v Value) { r.Stats[col] = v }

// Minutes returns the minutes played.
func (r *PlayerRecord) Minutes() Value { return r.Stats[ColMinutes] }

// AddIssue records a stage-local problem on the record.
func (r *PlayerRecord) AddIssue(stage, column, msg string) {
	r.Issues = append(r.Issues, Issue{Stage: stage, Column: column, Message: msg})
}

// Clone deep-copies the record.
func (r *PlayerRecord) Clone() *PlayerRecord {
	c := *r
	c.Stats = make(map[string]Value, len(r.Stats))
	for k, v := range r.Stats {
		c.Stats[k] = v
	}
	c.Issues = append([]Issue(nil), r.Issues...)
	return &c
}

// Table is an ordered set of numeric columns plus the records carrying them.
type Table struct {
	Columns []Column
	Records []*PlayerRecord

	index map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// AddColumn registers a column. Re-adding an existing name is a no-op and
// returns false.
func (t *Table) AddColumn(name string, kind ColumnKind) bool {
	if t.index == nil {
		t.reindex()
	}
	if _, ok := t.index[name]; ok {
		return false
	}
	t.index[name] = len(t.Columns)
	t.Columns = append(t.Columns, Column{Name: name, Kind: kind})
	return true
}

// HasColumn reports whether name is a registered column.
func (t *Table) HasColumn(name string) bool {
	if t.index == nil {
		t.reindex()
	}
	_, ok := t.index[name]
	return ok
}

// Column returns the named column definition.
func (t *Table) Column(name string) (Column, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// ColumnsOfKind returns column names of the given kinds, in table order.
func (t *Table) ColumnsOfKind(kinds ...ColumnKind) []string {
	want := make(map[ColumnKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []string
	for _, c := range t.Columns {
		if want[c.Kind] {
			out = append(out, c.Name)
		}
	}
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c.Name] = i
	}
}

// Clone deep-copies the table so the caller may mutate the result freely.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: append([]Column(nil), t.Columns...),
		Records: make([]*PlayerRecord, len(t.Records)),
	}
	c.reindex()
	for i, r := range t.Records {
		c.Records[i] = r.Clone()
	}
	return c
}

// CloneColumns returns an empty table with the same columns.
func (t *Table) CloneColumns() *Table {
	c := &Table{Columns: append([]Column(nil), t.Columns...)}
	c.reindex()
	return c
}

// Find returns all records matching name and, when squad is non-empty, squad.
// Name comparison is case-insensitive.
func (t *Table) Find(name, squad string) []*PlayerRecord {
	var out []*PlayerRecord
	for _, r := range t.Records {
		if !strings.EqualFold(r.Name, name) {
			continue
		}
		if squad != "" && !strings.EqualFold(r.Squad, squad) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortByIdentity orders records by (name, squad).
func (t *Table) SortByIdentity() {
	sort.SliceStable(t.Records, func(i, j int) bool {
		return t.Records[i].Identity.Less(t.Records[j].Identity)
	})
}
