package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.Similarity.Clusters)
	assert.Equal(t, 5, cfg.Similarity.TopN)
	assert.Equal(t, int64(42), cfg.Similarity.Seed)
	assert.InDelta(t, 0.2, cfg.Cohort.MinMinutesShare, 1e-12)
	assert.Len(t, cfg.Composites, 16)

	primary, ok := cfg.PrimaryCategory()
	require.True(t, ok)
	assert.Equal(t, "standard", primary.Name)
}

func TestDefaultKeepsDottedRawKeys(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	var passing Category
	for _, c := range cfg.Merge.Categories {
		if c.Name == "passing" {
			passing = c
		}
	}
	assert.Equal(t, "ShortPassCmp", passing.Columns["Cmp.1"])
	assert.Equal(t, "LongPassCmp%", passing.Columns["Cmp%.3"])
	assert.Equal(t, "Final1/3Cmp", passing.Columns["1/3"])
}

func TestFBTemplateHasNineTraits(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	fb := cfg.Similarity.Templates["FB"]
	assert.Len(t, fb, 9)
	assert.Contains(t, fb, "Defensive Intensity")
	assert.NotContains(t, fb, "Aerial Ability")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SCOUT_SIMILARITY__CLUSTERS", "12")
	t.Setenv("SCOUT_WORKERS", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Similarity.Clusters)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 5, cfg.Similarity.TopN)
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.yaml")
	body := []byte("season: \"2023-2024\"\ncohort:\n  min_minutes_share: 0.3\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2023-2024", cfg.Season)
	assert.InDelta(t, 0.3, cfg.Cohort.MinMinutesShare, 1e-12)
	// untouched siblings keep their defaults
	assert.Equal(t, []string{"FB", "CB", "DM", "CM", "AM", "W", "ST"}, cfg.Cohort.Order)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrLoadConfig)
}

func TestValidateRejectsUnknownCompositeInput(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Composites = append(cfg.Composites, Composite{Name: "Bogus", Inputs: []string{"NoSuchPer90_PR"}})

	err = cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "NoSuchPer90_PR")
}

func TestValidateRejectsUnknownTemplateTrait(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Similarity.Templates["CB"] = append(cfg.Similarity.Templates["CB"], "Vibes")

	err = cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "Vibes")
}

func TestValidateRejectsDuplicateDestination(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	for i := range cfg.Merge.Categories {
		if cfg.Merge.Categories[i].Name == "misc" {
			cfg.Merge.Categories[i].Columns["Int"] = "Int"
		}
	}
	err = cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), `destination "Int"`)
}

func TestValidateRejectsBadWorkers(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Workers = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestGroupOf(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	tests := []struct {
		pos  string
		want string
	}{
		{"Left-Back", "FB"},
		{"Right Midfield", "W"},
		{"Second Striker", "AM"},
		{"Goalkeeper", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.Cohort.GroupOf(tt.pos), tt.pos)
	}
}

func TestRankedMetricsDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	metrics := cfg.RankedMetrics()
	assert.Contains(t, metrics, "Min")
	assert.Contains(t, metrics, "TklWinPossPer90")
	assert.Contains(t, metrics, "pAdjTklWinPossPer90")
	assert.Contains(t, metrics, "TouchCentrality")
	assert.NotContains(t, metrics, "Born")
	assert.NotContains(t, metrics, "TotCmp%Per90")
}
