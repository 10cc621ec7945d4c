// Package adjust rescales player rates by team context: possession share,
// team minutes, team touches and opponent touches.
package adjust

import (
	"github.com/pable/go-fbref-scout/internal/model"
)

// Stage tags issues raised by this package.
const Stage = "adjust"

const (
	ColTklIntPer600OppTouch = "Tkl+IntPer600OppTouch"
	ColTouchCentrality      = "TouchCentrality"
	ColAdjTouches           = "pAdjTouchesPer90"
)

// ContextColumns are copied from the squad's TeamRecord onto every player.
var ContextColumns = []string{
	model.ColTeamPoss,
	model.ColTeamMinutes,
	model.ColTeamTouches,
	model.ColOppTouches,
}

// TouchColumns are the touch-based context metrics.
var TouchColumns = []string{
	ColTklIntPer600OppTouch,
	ColTouchCentrality,
	ColAdjTouches,
}

// baseline is the possession share every adjusted rate is rescaled to.
const baseline = 50.0

// Apply returns a new table with team context columns and adjusted rates:
//
//	pAdj{m}Per90          = {m}Per90 × 50 / (100 − poss)
//	Tkl+IntPer600OppTouch = Tkl+Int / (OppTouches × Min / TeamMins) × 600
//	TouchCentrality       = TouchesPer90 / TeamTouches90 × 100
//	pAdjTouchesPer90      = TouchesPer90 × 50 / poss
//
// A squad missing from teams leaves every column added here undefined for
// that record and records one issue.
func Apply(in *model.Table, teams map[string]model.TeamRecord, possession []string) *model.Table {
	out := in.Clone()
	for _, c := range ContextColumns {
		out.AddColumn(c, model.KindContext)
	}
	for _, m := range possession {
		out.AddColumn(model.AdjustedName(m), model.KindAdjusted)
	}
	for _, c := range TouchColumns {
		out.AddColumn(c, model.KindAdjusted)
	}

	for _, r := range out.Records {
		team, ok := teams[r.Squad]
		if !ok {
			r.AddIssue(Stage, "", "squad "+r.Squad+" not in team table, context columns undefined")
			for _, c := range ContextColumns {
				r.Set(c, model.Undefined())
			}
			for _, m := range possession {
				r.Set(model.AdjustedName(m), model.Undefined())
			}
			for _, c := range TouchColumns {
				r.Set(c, model.Undefined())
			}
			continue
		}

		r.Set(model.ColTeamPoss, team.Possession)
		r.Set(model.ColTeamMinutes, team.Minutes)
		r.Set(model.ColTeamTouches, team.TouchesPer90)
		r.Set(model.ColOppTouches, team.OppTouches)

		factor := PossessionFactor(team.Possession)
		if !factor.IsDefined() && team.Possession.IsDefined() {
			r.AddIssue(Stage, model.ColTeamPoss, "team possession is 100, adjusted rates undefined")
		}
		for _, m := range possession {
			r.Set(model.AdjustedName(m), model.Mul(r.Get(model.Per90Name(m)), factor))
		}

		share := model.Div(r.Minutes(), team.Minutes)
		oppFaced := model.Mul(team.OppTouches, share)
		r.Set(ColTklIntPer600OppTouch, model.Scale(model.Div(r.Get("Tkl+Int"), oppFaced), 600))

		touches := r.Get(model.Per90Name("Touches"))
		r.Set(ColTouchCentrality, model.Scale(model.Div(touches, team.TouchesPer90), 100))
		r.Set(ColAdjTouches, model.Mul(touches, model.Div(model.Defined(baseline), team.Possession)))
	}
	return out
}

// PossessionFactor is 50 / (100 − poss): 1 at 50% possession, undefined at
// 100% or when poss is undefined.
func PossessionFactor(poss model.Value) model.Value {
	return model.Div(model.Defined(baseline), model.Sub(model.Defined(100), poss))
}
