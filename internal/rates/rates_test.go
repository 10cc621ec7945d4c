package rates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-fbref-scout/internal/model"
)

func table(rows ...map[string]float64) *model.Table {
	t := model.NewTable()
	t.AddColumn(model.ColMinutes, model.KindMeta)
	t.AddColumn("Tkl", model.KindCount)
	t.AddColumn("TotCmp%", model.KindRate)
	t.AddColumn("passing:xA", model.KindAlias)
	for i, row := range rows {
		r := model.NewPlayerRecord(model.Identity{Name: string(rune('A' + i)), Squad: "X"})
		for k, v := range row {
			r.Set(k, model.Defined(v))
		}
		t.Records = append(t.Records, r)
	}
	return t
}

func TestNormalizePer90(t *testing.T) {
	in := table(
		map[string]float64{"Min": 900, "Tkl": 20, "TotCmp%": 80},
		map[string]float64{"Min": 450, "Tkl": 9, "TotCmp%": 75},
	)
	out := Normalize(in)

	a, _ := out.Records[0].Get("TklPer90").Float()
	b, _ := out.Records[1].Get("TklPer90").Float()
	assert.InDelta(t, 2.0, a, 1e-12)
	assert.InDelta(t, 1.8, b, 1e-12)

	c, ok := out.Column("TklPer90")
	require.True(t, ok)
	assert.Equal(t, model.KindPer90, c.Kind)
	assert.False(t, out.HasColumn("TotCmp%Per90"), "rate columns are not re-normalized")
	assert.False(t, out.HasColumn("passing:xAPer90"), "alias columns are not normalized")
	assert.False(t, out.HasColumn("MinPer90"))
}

func TestNormalizeZeroMinutes(t *testing.T) {
	in := table(map[string]float64{"Min": 0, "Tkl": 3})
	out := Normalize(in)

	r := out.Records[0]
	assert.False(t, r.Get("TklPer90").IsDefined())
	v, ok := r.Get("Tkl").Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, v, "raw count untouched")
	require.NotEmpty(t, r.Issues)
	assert.Equal(t, Stage, r.Issues[0].Stage)
	assert.Equal(t, model.ColMinutes, r.Issues[0].Column)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := table(map[string]float64{"Min": 900, "Tkl": 20})
	_ = Normalize(in)
	assert.False(t, in.HasColumn("TklPer90"))
	assert.False(t, in.Records[0].Get("TklPer90").IsDefined())
}

func TestNormalizeIsDeterministic(t *testing.T) {
	in := table(map[string]float64{"Min": 1234, "Tkl": 17}, map[string]float64{"Min": 77, "Tkl": 1})
	x, y := Normalize(in), Normalize(in)
	for i := range x.Records {
		for _, c := range x.Columns {
			xv, xok := x.Records[i].Get(c.Name).Float()
			yv, yok := y.Records[i].Get(c.Name).Float()
			assert.Equal(t, xok, yok, c.Name)
			assert.Equal(t, math.Float64bits(xv), math.Float64bits(yv), c.Name)
		}
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		defined bool
		ok      bool
	}{
		{"25-123", 25, true, true},
		{"19-000", 19, true, true},
		{"31", 31, true, true},
		{"", 0, false, true},
		{"old", 0, false, false},
	}
	for _, tt := range tests {
		v, ok := ParseAge(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		got, defined := v.Float()
		assert.Equal(t, tt.defined, defined, tt.in)
		if defined {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestNormalizeAgeIssue(t *testing.T) {
	in := table(map[string]float64{"Min": 900})
	in.Records[0].AgeText = "unknown"
	out := Normalize(in)
	assert.False(t, out.Records[0].Get(model.ColAge).IsDefined())
	require.Len(t, out.Records[0].Issues, 1)
	assert.Equal(t, model.ColAge, out.Records[0].Issues[0].Column)
}

func TestDerivedRatios(t *testing.T) {
	in := table(map[string]float64{
		"Min": 900, "Carries": 100, "Touches": 500, "ProgCarries": 20,
		"ProgCarryDistance": 300, "PassesAttempted": 400, "ShortPassAtt": 100,
		"LiveTouch": 0, "Tkl": 0, "Def3rdTkl": 0,
	})
	out := Normalize(in)
	r := out.Records[0]

	v, _ := r.Get("CarriesPer50Touches").Float()
	assert.InDelta(t, 10.0, v, 1e-12)
	v, _ = r.Get("ProgDistancePerCarry").Float()
	assert.InDelta(t, 15.0, v, 1e-12)
	v, _ = r.Get("ShortPass%").Float()
	assert.InDelta(t, 25.0, v, 1e-12)

	assert.False(t, r.Get("Def3rdTouch%").IsDefined(), "zero live touches")
	assert.False(t, r.Get("Def3rdTkl%").IsDefined(), "zero tackles")
	assert.False(t, r.Get("ProgPassesPer50CmpPasses").IsDefined(), "missing input")
}

func TestDerivedColumnsListed(t *testing.T) {
	names := DerivedColumns()
	assert.Contains(t, names, "ProgPassesPer50CmpPasses")
	assert.Contains(t, names, "Switch%")
	assert.Contains(t, names, "Att3rdTkl%")
}
