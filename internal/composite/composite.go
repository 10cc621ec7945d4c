// Package composite aggregates percentile columns into named trait scores.
package composite

import (
	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/model"
)

// Trait is a named, unweighted mean of percentile columns.
type Trait struct {
	Name   string
	Inputs []string
}

// FromConfig converts configured composites to traits, keeping their order.
func FromConfig(cs []config.Composite) []Trait {
	out := make([]Trait, len(cs))
	for i, c := range cs {
		out[i] = Trait{Name: c.Name, Inputs: append([]string(nil), c.Inputs...)}
	}
	return out
}

// Score is the mean of r's inputs, undefined when any input is undefined.
func (t Trait) Score(r *model.PlayerRecord) model.Value {
	vs := make([]model.Value, len(t.Inputs))
	for i, in := range t.Inputs {
		vs[i] = r.Get(in)
	}
	return model.Mean(vs...)
}

// Aggregate returns a new table with one composite column per trait.
func Aggregate(in *model.Table, traits []Trait) *model.Table {
	out := in.Clone()
	for _, t := range traits {
		out.AddColumn(t.Name, model.KindComposite)
	}
	for _, r := range out.Records {
		for _, t := range traits {
			r.Set(t.Name, t.Score(r))
		}
	}
	return out
}
