// Package config loads the pipeline configuration: input layout, column
// mappings, position groups, composite definitions and similarity templates.
//
// Values are layered, lowest precedence first:
//  1. the embedded default.yaml
//  2. an optional YAML file (--config)
//  3. SCOUT_ environment variables, "__" separating levels
//     (SCOUT_SIMILARITY__CLUSTERS=12)
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed default.yaml
var defaultYAML []byte

// Delim separates nested keys. Raw column names contain dots ("Cmp.1") and
// slashes ("1/3"), so the usual "." delimiter cannot be used.
const Delim = "::"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCOUT_"

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config is the full pipeline configuration.
type Config struct {
	Season    string `koanf:"season"`
	Workers   int    `koanf:"workers" validate:"min=1,max=256"`
	LogLevel  string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=console json"`

	Inputs     Inputs     `koanf:"inputs"`
	Merge      Merge      `koanf:"merge"`
	Teams      Teams      `koanf:"teams"`
	Adjust     Adjust     `koanf:"adjust"`
	Cohort     Cohort     `koanf:"cohort"`
	Percentile Percentile `koanf:"percentile"`
	Composites []Composite `koanf:"composites" validate:"required,min=1,dive"`
	Similarity Similarity `koanf:"similarity"`

	Profiles        map[string][]string `koanf:"profiles"`
	ProfileSections []Section           `koanf:"profile_sections" validate:"dive"`
}

// Inputs names the files read by `scout build`. Category files live on the
// merge categories.
type Inputs struct {
	Dir                    string `koanf:"dir"`
	SquadStandard          string `koanf:"squad_standard" validate:"required"`
	SquadPossession        string `koanf:"squad_possession" validate:"required"`
	SquadPossessionAgainst string `koanf:"squad_possession_against" validate:"required"`
	// Positions is optional; when the file is absent the FBRef Pos label is
	// used as the main position.
	Positions             string `koanf:"positions"`
	PositionsPlayerColumn string `koanf:"positions_player_column"`
	PositionsColumn       string `koanf:"positions_column"`
}

// Merge configures the Identity Merge stage.
type Merge struct {
	Strict         bool       `koanf:"strict"`
	PlayerColumn   string     `koanf:"player_column" validate:"required"`
	SquadColumn    string     `koanf:"squad_column" validate:"required"`
	NationColumn   string     `koanf:"nation_column"`
	PositionColumn string     `koanf:"position_column"`
	CompColumn     string     `koanf:"comp_column"`
	AgeColumn      string     `koanf:"age_column"`
	Ignore         []string   `koanf:"ignore"`
	Categories     []Category `koanf:"categories" validate:"required,min=1,dive"`
}

// Category maps one raw table's columns to destination names. Raw keys of
// repeated headers carry their occurrence suffix: Cmp, Cmp.1, Cmp.2.
type Category struct {
	Name    string            `koanf:"name" validate:"required"`
	File    string            `koanf:"file" validate:"required"`
	Primary bool              `koanf:"primary"`
	Columns map[string]string `koanf:"columns"`
	// Rates lists raw keys that are already rates (percentages, per-shot
	// ratios, per-90 values). They are not per-90 normalized.
	Rates []string `koanf:"rates"`
	// Meta lists raw keys that are numeric metadata (minutes, birth year).
	Meta   []string `koanf:"meta"`
	Ignore []string `koanf:"ignore"`
}

// Teams configures the squad context tables.
type Teams struct {
	SquadColumn      string `koanf:"squad_column" validate:"required"`
	PossessionColumn string `koanf:"possession_column" validate:"required"`
	MinutesColumn    string `koanf:"minutes_column" validate:"required"`
	TouchesColumn    string `koanf:"touches_column" validate:"required"`
	NinetiesColumn   string `koanf:"nineties_column" validate:"required"`
	AgainstPrefix    string `koanf:"against_prefix"`
}

// Adjust lists the metrics that receive pAdj{m}Per90 columns.
type Adjust struct {
	Possession []string `koanf:"possession"`
}

// Cohort configures position groups and the playing-time threshold.
type Cohort struct {
	MinMinutesShare float64             `koanf:"min_minutes_share" validate:"gte=0,lte=1"`
	GoalkeeperLabel string              `koanf:"goalkeeper_label"`
	Order           []string            `koanf:"order" validate:"required,min=1"`
	Groups          map[string][]string `koanf:"groups" validate:"required,min=1"`
}

// Percentile selects the ranked metrics. A non-empty Metrics list is used
// verbatim; otherwise every rankable column plus Extra, minus Exclude.
type Percentile struct {
	Metrics []string `koanf:"metrics"`
	Extra   []string `koanf:"extra"`
	Exclude []string `koanf:"exclude"`
}

// Composite is one named trait: the mean of its percentile inputs.
type Composite struct {
	Name   string   `koanf:"name" validate:"required"`
	Inputs []string `koanf:"inputs" validate:"required,min=1"`
}

// Similarity configures the similarity engine.
type Similarity struct {
	Clusters      int                 `koanf:"clusters" validate:"min=1"`
	TopN          int                 `koanf:"top_n" validate:"min=1"`
	Seed          int64               `koanf:"seed"`
	Restarts      int                 `koanf:"restarts" validate:"min=1"`
	MaxIterations int                 `koanf:"max_iterations" validate:"min=1"`
	Templates     map[string][]string `koanf:"templates" validate:"required,min=1"`
}

// Section is one titled block of the profile report.
type Section struct {
	Name    string   `koanf:"name" validate:"required"`
	Columns []string `koanf:"columns" validate:"required,min=1"`
}

// embedded is a koanf.Provider over the compiled-in defaults.
type embedded []byte

func (e embedded) ReadBytes() ([]byte, error) { return e, nil }

func (e embedded) Read() (map[string]interface{}, error) {
	return nil, errors.New("embedded provider does not support Read")
}

// Load layers the embedded defaults, the YAML file at path (skipped when
// path is empty) and SCOUT_ environment variables, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(Delim)

	if err := k.Load(embedded(defaultYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: defaults: %v", ErrLoadConfig, err)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// SCOUT_SIMILARITY__TOP_N -> similarity::top_n
	envProvider := env.Provider(EnvPrefix, Delim, func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", Delim)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the embedded configuration without file or env overrides.
func Default() (*Config, error) {
	k := koanf.New(Delim)
	if err := k.Load(embedded(defaultYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: defaults: %v", ErrLoadConfig, err)
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints, then checks that composites, templates
// and profiles only name columns and traits the pipeline produces.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	var problems []string
	problems = append(problems, c.checkCategories()...)
	problems = append(problems, c.checkGroups()...)
	problems = append(problems, c.checkVocabulary()...)
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// PrimaryCategory returns the category that defines which identities exist.
func (c *Config) PrimaryCategory() (Category, bool) {
	for _, cat := range c.Merge.Categories {
		if cat.Primary {
			return cat, true
		}
	}
	return Category{}, false
}

// GroupOf maps a main position to its position group; unmapped positions
// return "".
func (c *Cohort) GroupOf(mainPosition string) string {
	for _, g := range c.Order {
		for _, p := range c.Groups[g] {
			if p == mainPosition {
				return g
			}
		}
	}
	return ""
}

func (c *Config) checkCategories() []string {
	var out []string
	primaries := 0
	owner := make(map[string]string)
	names := make(map[string]bool)
	for _, cat := range c.Merge.Categories {
		if names[cat.Name] {
			out = append(out, fmt.Sprintf("category %q declared twice", cat.Name))
		}
		names[cat.Name] = true
		if cat.Primary {
			primaries++
		}
		for raw, dest := range cat.Columns {
			if dest == "" {
				out = append(out, fmt.Sprintf("%s: column %q has no destination", cat.Name, raw))
				continue
			}
			if prev, ok := owner[dest]; ok {
				out = append(out, fmt.Sprintf("destination %q claimed by %s and %s", dest, prev, cat.Name))
				continue
			}
			owner[dest] = cat.Name
		}
		for _, raw := range append(append([]string(nil), cat.Rates...), cat.Meta...) {
			if _, ok := cat.Columns[raw]; !ok {
				out = append(out, fmt.Sprintf("%s: %q listed as rate/meta but not mapped", cat.Name, raw))
			}
		}
	}
	if primaries != 1 {
		out = append(out, fmt.Sprintf("exactly one primary category required, found %d", primaries))
	}
	return out
}

func (c *Config) checkGroups() []string {
	var out []string
	seen := make(map[string]string)
	for _, g := range c.Cohort.Order {
		ps, ok := c.Cohort.Groups[g]
		if !ok {
			out = append(out, fmt.Sprintf("cohort order names unknown group %q", g))
			continue
		}
		for _, p := range ps {
			if prev, dup := seen[p]; dup {
				out = append(out, fmt.Sprintf("position %q mapped to both %s and %s", p, prev, g))
			}
			seen[p] = g
		}
	}
	for g := range c.Cohort.Groups {
		if !contains(c.Cohort.Order, g) {
			out = append(out, fmt.Sprintf("group %q missing from cohort order", g))
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
