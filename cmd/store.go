package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pable/go-fbref-scout/internal/model"
	"github.com/pable/go-fbref-scout/internal/storage"
)

func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// resolveRun finds the run matching prefix, or the latest run when prefix
// is empty.
func resolveRun(db *storage.DB, prefix string) (*storage.Run, error) {
	run, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	if run == nil {
		if prefix == "" {
			return nil, fmt.Errorf("no runs stored yet, run 'scout build' first")
		}
		return nil, fmt.Errorf("run not found: %s", prefix)
	}
	return run, nil
}

func loadRunTable(db *storage.DB, prefix string) (*storage.Run, *model.Table, error) {
	run, err := resolveRun(db, prefix)
	if err != nil {
		return nil, nil, err
	}
	t, err := db.LoadTable(run.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load run %s: %w", run.ID, err)
	}
	return run, t, nil
}

// findPlayer returns the single record of table matching name, narrowed by
// squad and position group when they are set.
func findPlayer(table *model.Table, name, squad, group string) (*model.PlayerRecord, error) {
	var found []*model.PlayerRecord
	for _, r := range table.Find(name, squad) {
		if group == "" || strings.EqualFold(r.PositionGroup, group) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("player not found: %s", name)
	case 1:
		return found[0], nil
	}
	opts := make([]string, len(found))
	for i, r := range found {
		opts[i] = fmt.Sprintf("%s %s", r.Identity, r.PositionGroup)
	}
	return nil, fmt.Errorf("%s is ambiguous, pass --squad or --group: %s", name, strings.Join(opts, "; "))
}
