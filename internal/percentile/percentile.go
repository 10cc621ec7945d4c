// Package percentile computes within-cohort percentile ranks.
//
// The rank of a value is its average rank among the defined values of the
// cohort (ties share the mean of the ranks they span), divided by the number
// of defined values, times 100, rounded half-to-even to one decimal.
package percentile

import (
	"math"
	"sort"

	"github.com/pable/go-fbref-scout/internal/model"
)

// Rankable are the column kinds ranked by default.
var Rankable = []model.ColumnKind{
	model.KindCount,
	model.KindRate,
	model.KindPer90,
	model.KindContext,
	model.KindAdjusted,
	model.KindDerived,
}

// Select returns the default metric list of t: every rankable column plus
// extra columns present in t, minus exclude, in table order.
func Select(t *model.Table, extra, exclude []string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	want := make(map[string]bool, len(extra))
	for _, e := range extra {
		want[e] = true
	}
	rankable := make(map[model.ColumnKind]bool, len(Rankable))
	for _, k := range Rankable {
		rankable[k] = true
	}
	var out []string
	for _, c := range t.Columns {
		if skip[c.Name] {
			continue
		}
		if rankable[c.Kind] || want[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}

// Rank returns a new table with a {m}_PR column for each metric. Records
// with an undefined metric are left out of that metric's population and
// get an undefined rank.
func Rank(in *model.Table, metrics []string) *model.Table {
	out := in.Clone()
	vals := make([]model.Value, len(out.Records))
	for _, m := range metrics {
		name := model.PercentileName(m)
		out.AddColumn(name, model.KindPercentile)
		for i, r := range out.Records {
			vals[i] = r.Get(m)
		}
		ranks := Ranks(vals)
		for i, r := range out.Records {
			r.Set(name, ranks[i])
		}
	}
	return out
}

// Ranks returns the percentile rank of every value in vals. Undefined inputs
// map to undefined outputs and do not count towards n.
func Ranks(vals []model.Value) []model.Value {
	type entry struct {
		idx int
		v   float64
	}
	defined := make([]entry, 0, len(vals))
	for i, x := range vals {
		if f, ok := x.Float(); ok {
			defined = append(defined, entry{i, f})
		}
	}
	out := make([]model.Value, len(vals))
	n := len(defined)
	if n == 0 {
		return out
	}
	sort.SliceStable(defined, func(a, b int) bool { return defined[a].v < defined[b].v })

	for i := 0; i < n; {
		j := i
		for j+1 < n && defined[j+1].v == defined[i].v {
			j++
		}
		// ranks i+1 .. j+1 averaged
		avg := float64(i+j+2) / 2
		pct := Round1(avg / float64(n) * 100)
		for k := i; k <= j; k++ {
			out[defined[k].idx] = model.Defined(pct)
		}
		i = j + 1
	}
	return out
}

// Round1 rounds half-to-even to one decimal place.
func Round1(x float64) float64 {
	return math.RoundToEven(x*10) / 10
}
