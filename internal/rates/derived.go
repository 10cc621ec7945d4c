package rates

import "github.com/pable/go-fbref-scout/internal/model"

type derivation struct {
	name string
	fn   func(r *model.PlayerRecord) model.Value
}

// ratio returns num/den*k, undefined when den is zero or undefined.
func ratio(num, den string, k float64) func(r *model.PlayerRecord) model.Value {
	return func(r *model.PlayerRecord) model.Value {
		return model.Scale(model.Div(r.Get(num), r.Get(den)), k)
	}
}

// Ratios of two counts from the same record equal the ratio of their per-90
// values, so raw counts are used throughout.
var derivations = []derivation{
	{"CarriesPer50Touches", ratio("Carries", "Touches", 50)},
	{"ProgCarriesPer50Touches", ratio("ProgCarries", "Touches", 50)},
	{"ProgPassesPer50CmpPasses", ratio("ProgPasses", "PassesCompleted", 50)},
	{"ProgDistancePerCarry", ratio("ProgCarryDistance", "ProgCarries", 1)},
	{"ProgCarryEfficiency", func(r *model.PlayerRecord) model.Value {
		thirds := r.Get(model.Per90Name("CarriesToFinalThird"))
		box := r.Get(model.Per90Name("CarriesToPenArea"))
		return model.Scale(model.Div(model.Mul(thirds, box), r.Get(model.Per90Name("Carries"))), 100)
	}},

	// pass type shares
	{"ShortPass%", ratio("ShortPassAtt", "PassesAttempted", 100)},
	{"MediumPass%", ratio("MedPassAtt", "PassesAttempted", 100)},
	{"LongPass%", ratio("LongPassAtt", "PassesAttempted", 100)},
	{"ProgPass%", ratio("ProgPasses", "PassesAttempted", 100)},
	{"Switch%", ratio("Switches", "PassesAttempted", 100)},
	{"KeyPass%", ratio("KeyPasses", "PassesAttempted", 100)},
	{"Final3rdPass%", ratio("Final1/3Cmp", "PassesAttempted", 100)},
	{"ThroughPass%", ratio("ThruBalls", "PassesAttempted", 100)},

	// touch areas
	{"Def3rdTouch%", ratio("Def3rdTouch", "LiveTouch", 100)},
	{"Mid3rdTouch%", ratio("Mid3rdTouch", "LiveTouch", 100)},
	{"Att3rdTouch%", ratio("Att3rdTouch", "LiveTouch", 100)},
	{"AttPenTouch%", ratio("AttPenTouch", "LiveTouch", 100)},
	{"ActionsPerTouch", func(r *model.PlayerRecord) model.Value {
		actions := model.Add(r.Get("PassesAttempted"), r.Get("Shots"))
		return model.Scale(model.Div(actions, r.Get("LiveTouch")), 100)
	}},

	// tackle areas
	{"Def3rdTkl%", ratio("Def3rdTkl", "Tkl", 100)},
	{"Mid3rdTkl%", ratio("Mid3rdTkl", "Tkl", 100)},
	{"Att3rdTkl%", ratio("Att3rdTkl", "Tkl", 100)},
}

// DerivedColumns lists the ratio columns Normalize adds, in order.
func DerivedColumns() []string {
	out := make([]string, len(derivations))
	for i, d := range derivations {
		out[i] = d.name
	}
	return out
}
