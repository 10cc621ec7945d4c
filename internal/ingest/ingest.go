// Package ingest reads already-scraped FBRef tables from CSV files into
// model.RawTable values. Files may be zstd (.zst) or gzip (.gz) compressed.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/model"
)

// ErrNoHeader is returned when no row of a file contains the header marker.
var ErrNoHeader = errors.New("header row not found")

// Inputs is everything one pipeline run reads from disk.
type Inputs struct {
	Players map[string]model.RawTable // by category name

	SquadStandard          model.RawTable
	SquadPossession        model.RawTable
	SquadPossessionAgainst model.RawTable

	// Positions is nil when no positions table was found.
	Positions *model.RawTable
}

// LoadDir reads every table named by cfg from dir. A missing category or
// squad table is an error; a missing positions table is not.
func LoadDir(dir string, cfg *config.Config) (*Inputs, error) {
	in := &Inputs{Players: make(map[string]model.RawTable, len(cfg.Merge.Categories))}
	for _, cat := range cfg.Merge.Categories {
		t, err := ReadFile(filepath.Join(dir, cat.File), cat.Name, cfg.Merge.PlayerColumn)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", cat.Name, err)
		}
		in.Players[cat.Name] = t
	}

	squads := []struct {
		file string
		dst  *model.RawTable
		name string
	}{
		{cfg.Inputs.SquadStandard, &in.SquadStandard, "squad_standard"},
		{cfg.Inputs.SquadPossession, &in.SquadPossession, "squad_possession"},
		{cfg.Inputs.SquadPossessionAgainst, &in.SquadPossessionAgainst, "squad_possession_against"},
	}
	for _, s := range squads {
		t, err := ReadFile(filepath.Join(dir, s.file), s.name, cfg.Teams.SquadColumn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.dst = t
	}

	if cfg.Inputs.Positions != "" {
		t, err := ReadFile(filepath.Join(dir, cfg.Inputs.Positions), "positions", cfg.Inputs.PositionsPlayerColumn)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Info().Str("file", cfg.Inputs.Positions).Msg("no positions table, using FBRef position labels")
		case err != nil:
			return nil, fmt.Errorf("positions: %w", err)
		default:
			in.Positions = &t
		}
	}
	return in, nil
}

// ReadFile opens path, falling back to path.zst and path.gz when the plain
// file does not exist, and parses it with Read.
func ReadFile(path, category, marker string) (model.RawTable, error) {
	rc, err := Open(path)
	if err != nil {
		return model.RawTable{}, err
	}
	defer rc.Close()
	t, err := Read(rc, category, marker)
	if err != nil {
		return model.RawTable{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("category", category).Str("file", path).Int("rows", len(t.Rows)).Msg("read table")
	return t, nil
}

// Open returns a decompressing reader for path. The compression is chosen by
// extension.
func Open(path string) (io.ReadCloser, error) {
	candidates := []string{path}
	if !hasCompressedExt(path) {
		candidates = append(candidates, path+".zst", path+".gz")
	}
	for _, p := range candidates {
		f, err := os.Open(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return wrap(p, f)
	}
	return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
}

func hasCompressedExt(path string) bool {
	return strings.HasSuffix(path, ".zst") || strings.HasSuffix(path, ".gz")
}

func wrap(path string, f *os.File) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return &readCloser{Reader: dec, close: func() error { dec.Close(); return f.Close() }}, nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &readCloser{Reader: gz, close: func() error { gz.Close(); return f.Close() }}, nil
	default:
		return f, nil
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }

// Read parses CSV from r. The header is the first row containing marker
// (FBRef exports carry an over-header row of column groups above it); with
// an empty marker the first row is the header. Cells are trimmed and a UTF-8
// BOM is stripped.
func Read(r io.Reader, category, marker string) (model.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := model.RawTable{Category: category}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.RawTable{}, err
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(strings.TrimPrefix(rec[i], "\ufeff"))
		}
		if t.Header == nil {
			if marker == "" || indexOf(rec, marker) >= 0 {
				t.Header = rec
			}
			continue
		}
		if isBlank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	if t.Header == nil {
		return model.RawTable{}, fmt.Errorf("%w: %q", ErrNoHeader, marker)
	}
	return t, nil
}

func indexOf(ss []string, s string) int {
	for i, x := range ss {
		if x == s {
			return i
		}
	}
	return -1
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}
