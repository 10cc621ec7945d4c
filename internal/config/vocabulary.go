package config

import (
	"fmt"
	"sort"

	"github.com/pable/go-fbref-scout/internal/adjust"
	"github.com/pable/go-fbref-scout/internal/model"
	"github.com/pable/go-fbref-scout/internal/rates"
)

// Vocabulary is the set of numeric columns a run with this configuration
// produces before percentile ranking, by kind.
type Vocabulary map[string]model.ColumnKind

// Vocabulary derives the column vocabulary from the category mappings and
// the fixed derivations of the rates and adjust stages.
func (c *Config) Vocabulary() Vocabulary {
	v := make(Vocabulary)
	for _, cat := range c.Merge.Categories {
		rateSet := toSet(cat.Rates)
		metaSet := toSet(cat.Meta)
		for raw, dest := range cat.Columns {
			switch {
			case metaSet[raw]:
				v[dest] = model.KindMeta
			case rateSet[raw]:
				v[dest] = model.KindRate
			default:
				v[dest] = model.KindCount
				v[model.Per90Name(dest)] = model.KindPer90
			}
		}
	}
	if c.Merge.AgeColumn != "" {
		v[model.ColAge] = model.KindMeta
	}
	for _, name := range rates.DerivedColumns() {
		v[name] = model.KindDerived
	}
	for _, name := range adjust.ContextColumns {
		v[name] = model.KindContext
	}
	for _, m := range c.Adjust.Possession {
		v[model.AdjustedName(m)] = model.KindAdjusted
	}
	for _, name := range adjust.TouchColumns {
		v[name] = model.KindAdjusted
	}
	return v
}

// RankedMetrics returns the metric list the percentile stage ranks under
// this configuration, sorted.
func (c *Config) RankedMetrics() []string {
	if len(c.Percentile.Metrics) > 0 {
		out := append([]string(nil), c.Percentile.Metrics...)
		sort.Strings(out)
		return out
	}
	v := c.Vocabulary()
	exclude := toSet(c.Percentile.Exclude)
	set := make(map[string]bool)
	for name, kind := range v {
		if kind != model.KindMeta && !exclude[name] {
			set[name] = true
		}
	}
	for _, name := range c.Percentile.Extra {
		if !exclude[name] {
			set[name] = true
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Config) checkVocabulary() []string {
	var out []string
	v := c.Vocabulary()

	if _, ok := v[model.ColMinutes]; !ok {
		out = append(out, fmt.Sprintf("no category maps a %q column", model.ColMinutes))
	}
	for _, m := range c.Adjust.Possession {
		if v[m] != model.KindCount {
			out = append(out, fmt.Sprintf("adjust metric %q is not a counting column", m))
		}
	}
	for _, name := range c.Percentile.Metrics {
		if _, ok := v[name]; !ok {
			out = append(out, fmt.Sprintf("percentile metric %q is never produced", name))
		}
	}
	for _, name := range c.Percentile.Extra {
		if _, ok := v[name]; !ok {
			out = append(out, fmt.Sprintf("percentile extra %q is never produced", name))
		}
	}

	ranked := make(map[string]bool)
	for _, m := range c.RankedMetrics() {
		ranked[model.PercentileName(m)] = true
	}
	traits := make(map[string]bool, len(c.Composites))
	for _, t := range c.Composites {
		if traits[t.Name] {
			out = append(out, fmt.Sprintf("composite %q defined twice", t.Name))
		}
		traits[t.Name] = true
		for _, in := range t.Inputs {
			if !ranked[in] {
				out = append(out, fmt.Sprintf("composite %q: unknown percentile column %q", t.Name, in))
			}
		}
	}

	for _, g := range sortedKeys(c.Similarity.Templates) {
		if g != model.GroupOther && c.Cohort.Groups[g] == nil {
			out = append(out, fmt.Sprintf("similarity template for unknown group %q", g))
		}
		for _, trait := range c.Similarity.Templates[g] {
			if !traits[trait] {
				out = append(out, fmt.Sprintf("similarity template %s: unknown trait %q", g, trait))
			}
		}
	}

	known := func(col string) bool {
		_, produced := v[col]
		return traits[col] || ranked[col] || produced
	}
	for _, g := range sortedKeys(c.Profiles) {
		for _, col := range c.Profiles[g] {
			if !known(col) {
				out = append(out, fmt.Sprintf("profile %s: unknown column %q", g, col))
			}
		}
	}
	for _, s := range c.ProfileSections {
		for _, col := range s.Columns {
			if !known(col) {
				out = append(out, fmt.Sprintf("profile section %s: unknown column %q", s.Name, col))
			}
		}
	}
	return out
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
