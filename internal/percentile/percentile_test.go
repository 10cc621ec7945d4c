package percentile

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-fbref-scout/internal/model"
)

func vals(fs ...float64) []model.Value {
	out := make([]model.Value, len(fs))
	for i, f := range fs {
		out[i] = model.Defined(f)
	}
	return out
}

func floats(t *testing.T, vs []model.Value) []float64 {
	t.Helper()
	out := make([]float64, len(vs))
	for i, v := range vs {
		f, ok := v.Float()
		require.True(t, ok, "rank %d undefined", i)
		out[i] = f
	}
	return out
}

func TestRanksTwoPlayers(t *testing.T) {
	assert.Equal(t, []float64{100, 50}, floats(t, Ranks(vals(3.1, 1.2))))
}

func TestRanksTies(t *testing.T) {
	// ranks 1, (2+3)/2, (2+3)/2, 4 over n=4
	got := floats(t, Ranks(vals(1, 5, 5, 9)))
	assert.Equal(t, []float64{25, 62.5, 62.5, 100}, got)
}

func TestRanksAllEqual(t *testing.T) {
	got := floats(t, Ranks(vals(7, 7, 7)))
	assert.Equal(t, []float64{66.7, 66.7, 66.7}, got)
}

func TestRanksUndefinedExcluded(t *testing.T) {
	in := []model.Value{model.Defined(10), model.Undefined(), model.Defined(20)}
	out := Ranks(in)
	assert.False(t, out[1].IsDefined())
	a, _ := out[0].Float()
	c, _ := out[2].Float()
	assert.Equal(t, 50.0, a, "n counts defined values only")
	assert.Equal(t, 100.0, c)
}

func TestRanksEmpty(t *testing.T) {
	out := Ranks([]model.Value{model.Undefined(), model.Undefined()})
	assert.False(t, out[0].IsDefined())
	assert.False(t, out[1].IsDefined())
}

func TestRound1HalfEven(t *testing.T) {
	assert.Equal(t, 12.5, Round1(12.5))
	assert.Equal(t, 33.3, Round1(100.0/3))
	assert.Equal(t, 16.7, Round1(100.0/6))
	assert.Equal(t, 0.2, Round1(0.25))
}

func TestRanksProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(40)
		in := make([]model.Value, n)
		maxV, maxIdx := -1.0, -1
		for i := range in {
			if rng.Intn(6) == 0 {
				continue
			}
			v := float64(rng.Intn(10))
			in[i] = model.Defined(v)
			if v > maxV {
				maxV, maxIdx = v, i
			}
		}
		out := Ranks(in)
		best := -1.0
		for i, r := range out {
			assert.Equal(t, in[i].IsDefined(), r.IsDefined())
			f, ok := r.Float()
			if !ok {
				continue
			}
			assert.GreaterOrEqual(t, f, 0.0)
			assert.LessOrEqual(t, f, 100.0)
			if f > best {
				best = f
			}
		}
		if maxIdx >= 0 {
			top, _ := out[maxIdx].Float()
			assert.Equal(t, best, top, "maximum value holds the maximum percentile")
		}
	}
}

func TestRankTable(t *testing.T) {
	tbl := model.NewTable()
	tbl.AddColumn("TklPer90", model.KindPer90)
	a := model.NewPlayerRecord(model.Identity{Name: "A", Squad: "X"})
	a.Set("TklPer90", model.Defined(3))
	c := model.NewPlayerRecord(model.Identity{Name: "C", Squad: "Y"})
	c.Set("TklPer90", model.Defined(1))
	tbl.Records = []*model.PlayerRecord{a, c}

	out := Rank(tbl, []string{"TklPer90"})
	col, ok := out.Column("TklPer90_PR")
	require.True(t, ok)
	assert.Equal(t, model.KindPercentile, col.Kind)

	pa, _ := out.Records[0].Get("TklPer90_PR").Float()
	pc, _ := out.Records[1].Get("TklPer90_PR").Float()
	assert.Equal(t, 100.0, pa)
	assert.Equal(t, 50.0, pc)
	assert.False(t, tbl.HasColumn("TklPer90_PR"), "input untouched")
}

func TestSelect(t *testing.T) {
	tbl := model.NewTable()
	tbl.AddColumn("Min", model.KindMeta)
	tbl.AddColumn("Born", model.KindMeta)
	tbl.AddColumn("Tkl", model.KindCount)
	tbl.AddColumn("TklPer90", model.KindPer90)
	tbl.AddColumn("TotCmp%", model.KindRate)
	tbl.AddColumn("passing:xA", model.KindAlias)
	tbl.AddColumn("AvgTeamPoss", model.KindContext)

	got := Select(tbl, []string{"Min"}, []string{"AvgTeamPoss"})
	assert.Equal(t, []string{"Min", "Tkl", "TklPer90", "TotCmp%"}, got)
}
