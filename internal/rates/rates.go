// Package rates derives per-90 columns from counting statistics, normalizes
// age, and adds the ratio columns built from raw counts.
package rates

import (
	"strconv"
	"strings"

	"github.com/pable/go-fbref-scout/internal/model"
)

// Stage tags issues raised by this package.
const Stage = "rates"

// Normalize returns a new table with {raw}Per90 for every count column, Age
// parsed to whole years and the derived ratio columns. Rate, meta and alias
// columns are left as they are.
//
// A record with zero or undefined minutes gets undefined per-90 values and
// one issue; it is never divided through.
func Normalize(in *model.Table) *model.Table {
	out := in.Clone()
	counts := in.ColumnsOfKind(model.KindCount)
	for _, c := range counts {
		out.AddColumn(model.Per90Name(c), model.KindPer90)
	}
	out.AddColumn(model.ColAge, model.KindMeta)
	for _, d := range derivations {
		out.AddColumn(d.name, model.KindDerived)
	}

	for _, r := range out.Records {
		nineties := model.Div(r.Minutes(), model.Defined(90))
		if m, ok := r.Minutes().Float(); !ok || m == 0 {
			r.AddIssue(Stage, model.ColMinutes, "zero or missing minutes, per-90 values undefined")
		}
		for _, c := range counts {
			r.Set(model.Per90Name(c), model.Div(r.Get(c), nineties))
		}

		age, ok := ParseAge(r.AgeText)
		if !ok {
			r.AddIssue(Stage, model.ColAge, "unparseable age "+strconv.Quote(r.AgeText))
		}
		r.Set(model.ColAge, age)

		for _, d := range derivations {
			r.Set(d.name, d.fn(r))
		}
	}
	return out
}

// ParseAge converts FBRef's "years-days" age ("25-123") to whole years. A
// bare number is accepted as well. ok is false for a non-empty cell that is
// neither.
func ParseAge(s string) (model.Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Undefined(), true
	}
	years, _, _ := strings.Cut(s, "-")
	n, err := strconv.Atoi(years)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return model.Undefined(), false
		}
		n = int(f)
	}
	return model.Defined(float64(n)), true
}
