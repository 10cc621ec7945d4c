package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/pable/go-fbref-scout/internal/model"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one stored pipeline run.
type Run struct {
	ID        string
	Season    string
	CreatedAt time.Time
	Players   int
	Cohorts   int
	Columns   int
}

// IssueRow is one stored record issue.
type IssueRow struct {
	model.Identity
	model.Issue
}

// CohortStats summarises one position group of a run.
type CohortStats struct {
	Group     string
	Players   int
	Defined   int
	Undefined int
}

// SaveRun stores run, every record of t with its values, and the issues, in
// one transaction. Undefined values are stored as NULL.
func (db *DB) SaveRun(run Run, t *model.Table, issues map[model.Identity][]model.Issue) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	groups := make(map[string]bool)
	for _, r := range t.Records {
		groups[r.PositionGroup] = true
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO runs(id, season, created_at, players, cohorts, columns)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Season, run.CreatedAt.UTC().Format(timeLayout),
		len(t.Records), len(groups), len(t.Columns),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	colStmt, err := tx.Prepare(`INSERT INTO run_columns(run_id, position, name, kind) VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer colStmt.Close()
	for i, c := range t.Columns {
		if _, err := colStmt.Exec(run.ID, i, c.Name, c.Kind.String()); err != nil {
			return fmt.Errorf("insert run_columns %s: %w", c.Name, err)
		}
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO player_records(
			run_id, record_id, player, squad, nation, pos, comp, main_position, position_group
		) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer recStmt.Close()
	valStmt, err := tx.Prepare(`INSERT INTO player_values(run_id, record_id, column_name, value) VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer valStmt.Close()

	for id, r := range t.Records {
		if _, err := recStmt.Exec(run.ID, id, r.Name, r.Squad, r.Nation, r.Pos, r.Comp,
			r.MainPosition, r.PositionGroup); err != nil {
			return fmt.Errorf("insert player_records for %s: %w", r.Identity, err)
		}
		for _, c := range t.Columns {
			if _, err := valStmt.Exec(run.ID, id, c.Name, nullable(r.Get(c.Name))); err != nil {
				return fmt.Errorf("insert player_values for %s/%s: %w", r.Identity, c.Name, err)
			}
		}
	}

	issueStmt, err := tx.Prepare(`
		INSERT INTO record_issues(run_id, player, squad, stage, column_name, message)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer issueStmt.Close()
	ids := make([]model.Identity, 0, len(issues))
	for id := range issues {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	for _, id := range ids {
		for _, is := range issues[id] {
			if _, err := issueStmt.Exec(run.ID, id.Name, id.Squad, is.Stage, is.Column, is.Message); err != nil {
				return fmt.Errorf("insert record_issues for %s: %w", id, err)
			}
		}
	}
	return tx.Commit()
}

// ListRuns returns all stored runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.conn.Query(`
		SELECT id, season, created_at, players, cohorts, columns
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetRunByPrefix finds the newest run whose id starts with prefix. An empty
// prefix selects the latest run. It returns nil when nothing matches.
func (db *DB) GetRunByPrefix(prefix string) (*Run, error) {
	row := db.conn.QueryRow(`
		SELECT id, season, created_at, players, cohorts, columns
		FROM runs WHERE id LIKE ? ORDER BY created_at DESC LIMIT 1`, prefix+"%")
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var created string
	if err := s.Scan(&r.ID, &r.Season, &created, &r.Players, &r.Cohorts, &r.Columns); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("run %s created_at: %w", r.ID, err)
	}
	r.CreatedAt = t
	return &r, nil
}

// LoadTable rebuilds the scored table of a run.
func (db *DB) LoadTable(runID string) (*model.Table, error) {
	t := model.NewTable()
	cols, err := db.conn.Query(`SELECT name, kind FROM run_columns WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	for cols.Next() {
		var name, kind string
		if err := cols.Scan(&name, &kind); err != nil {
			cols.Close()
			return nil, err
		}
		t.AddColumn(name, model.ParseColumnKind(kind))
	}
	cols.Close()
	if err := cols.Err(); err != nil {
		return nil, err
	}

	recs, err := db.conn.Query(`
		SELECT record_id, player, squad, nation, pos, comp, main_position, position_group
		FROM player_records WHERE run_id = ? ORDER BY record_id`, runID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*model.PlayerRecord)
	for recs.Next() {
		var id int
		r := model.NewPlayerRecord(model.Identity{})
		if err := recs.Scan(&id, &r.Name, &r.Squad, &r.Nation, &r.Pos, &r.Comp,
			&r.MainPosition, &r.PositionGroup); err != nil {
			recs.Close()
			return nil, err
		}
		byID[id] = r
		t.Records = append(t.Records, r)
	}
	recs.Close()
	if err := recs.Err(); err != nil {
		return nil, err
	}

	vals, err := db.conn.Query(`SELECT record_id, column_name, value FROM player_values WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer vals.Close()
	for vals.Next() {
		var id int
		var col string
		var v sql.NullFloat64
		if err := vals.Scan(&id, &col, &v); err != nil {
			return nil, err
		}
		if r, ok := byID[id]; ok && v.Valid {
			r.Set(col, model.Defined(v.Float64))
		}
	}
	return t, vals.Err()
}

// Issues returns the stored issues of a run ordered by player.
func (db *DB) Issues(runID string) ([]IssueRow, error) {
	rows, err := db.conn.Query(`
		SELECT player, squad, stage, column_name, message
		FROM record_issues WHERE run_id = ?
		ORDER BY player, squad, rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IssueRow
	for rows.Next() {
		var ir IssueRow
		if err := rows.Scan(&ir.Name, &ir.Squad, &ir.Stage, &ir.Column, &ir.Message); err != nil {
			return nil, err
		}
		out = append(out, ir)
	}
	return out, rows.Err()
}

// CohortSummary returns per-group player counts and defined/undefined value
// counts, in stored group order.
func (db *DB) CohortSummary(runID string) ([]CohortStats, error) {
	rows, err := db.conn.Query(`
		SELECT r.position_group,
		       COUNT(DISTINCT r.record_id),
		       COUNT(v.value),
		       SUM(CASE WHEN v.column_name IS NOT NULL AND v.value IS NULL THEN 1 ELSE 0 END)
		FROM player_records r
		LEFT JOIN player_values v ON v.run_id = r.run_id AND v.record_id = r.record_id
		WHERE r.run_id = ?
		GROUP BY r.position_group
		ORDER BY MIN(r.record_id)`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CohortStats
	for rows.Next() {
		var s CohortStats
		if err := rows.Scan(&s.Group, &s.Players, &s.Defined, &s.Undefined); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and everything stored under it.
func (db *DB) DeleteRun(runID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"player_values", "player_records", "record_issues", "run_columns", "runs"} {
		col := "run_id"
		if table == "runs" {
			col = "id"
		}
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, col), runID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// QueryRaw runs an arbitrary query and returns column names and rows as
// strings. NULL cells print as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, c := range cells {
			switch v := c.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(v)
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func nullable(v model.Value) any {
	if f, ok := v.Float(); ok {
		return f
	}
	return nil
}
