package cohort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/model"
)

func cohortConfig() config.Cohort {
	return config.Cohort{
		MinMinutesShare: 0.2,
		GoalkeeperLabel: "GK",
		Order:           []string{"FB", "CB", "W"},
		Groups: map[string][]string{
			"FB": {"Left-Back", "Right-Back"},
			"CB": {"Centre-Back"},
			"W":  {"Left Winger", "Right Winger"},
		},
	}
}

func rec(name, squad, pos string, min, teamMin float64) *model.PlayerRecord {
	r := model.NewPlayerRecord(model.Identity{Name: name, Squad: squad})
	r.Pos = pos
	r.Set(model.ColMinutes, model.Defined(min))
	r.Set(model.ColTeamMinutes, model.Defined(teamMin))
	return r
}

func tableOf(rs ...*model.PlayerRecord) *model.Table {
	t := model.NewTable()
	t.AddColumn(model.ColMinutes, model.KindMeta)
	t.AddColumn(model.ColTeamMinutes, model.KindContext)
	t.Records = rs
	return t
}

func TestAssign(t *testing.T) {
	in := tableOf(
		rec("A", "X", "DF", 900, 2700),
		rec("B", "X", "MF", 900, 2700),
		rec("K", "X", "GK", 900, 2700),
		rec("Z", "X", "Centre-Back", 900, 2700),
	)
	positions := map[string]string{"A": "Left-Back", "B": "Central Midfield", "K": "Centre-Back"}
	out := Assign(in, positions, cohortConfig())

	assert.Equal(t, "Left-Back", out.Records[0].MainPosition)
	assert.Equal(t, "FB", out.Records[0].PositionGroup)
	assert.Equal(t, model.GroupOther, out.Records[1].PositionGroup, "unmapped position is kept as Other")
	assert.Equal(t, Goalkeeper, out.Records[2].MainPosition, "keeper label wins over positions table")
	assert.Equal(t, model.GroupOther, out.Records[2].PositionGroup)
	assert.Equal(t, "CB", out.Records[3].PositionGroup, "FBRef label used without a positions row")

	assert.Empty(t, in.Records[0].PositionGroup, "input untouched")
}

func TestQualifies(t *testing.T) {
	assert.True(t, Qualifies(rec("A", "X", "", 900, 2700), 0.2))
	assert.False(t, Qualifies(rec("B", "X", "", 450, 2700), 0.2))
	assert.True(t, Qualifies(rec("E", "X", "", 540, 2700), 0.2), "exactly 20% qualifies")

	noTeam := model.NewPlayerRecord(model.Identity{Name: "C"})
	noTeam.Set(model.ColMinutes, model.Defined(900))
	assert.False(t, Qualifies(noTeam, 0.2), "undefined share never qualifies")
	assert.False(t, Qualifies(rec("Z", "X", "", 900, 0), 0.2))
}

func TestBuildThresholdAndOrder(t *testing.T) {
	in := tableOf(
		rec("W1", "X", "Left Winger", 1000, 2700),
		rec("A", "X", "Left-Back", 900, 2700),
		rec("B", "X", "Right-Back", 450, 2700),
		rec("C", "Y", "Right-Back", 1800, 2700),
		rec("M", "Y", "Mystery", 2000, 2700),
	)
	cs := Build(Assign(in, nil, cohortConfig()), cohortConfig())

	require.Len(t, cs, 3)
	assert.Equal(t, "FB", cs[0].Group)
	assert.Equal(t, "W", cs[1].Group)
	assert.Equal(t, model.GroupOther, cs[2].Group)

	fb := cs[0].Table.Records
	require.Len(t, fb, 2, "B is below 20% of team minutes")
	assert.Equal(t, "A", fb[0].Name)
	assert.Equal(t, "C", fb[1].Name)
}

func TestBuildDedupeKeepsMostMinutes(t *testing.T) {
	in := tableOf(
		rec("Mover", "Early", "Left-Back", 800, 2700),
		rec("Mover", "Late", "Left-Back", 1500, 2700),
		rec("Tie", "Beta", "Centre-Back", 900, 2700),
		rec("Tie", "Alpha", "Centre-Back", 900, 2700),
	)
	cs := Build(Assign(in, nil, cohortConfig()), cohortConfig())
	require.Len(t, cs, 2)

	require.Len(t, cs[0].Table.Records, 1)
	assert.Equal(t, "Late", cs[0].Table.Records[0].Squad)
	require.Len(t, cs[1].Table.Records, 1)
	assert.Equal(t, "Alpha", cs[1].Table.Records[0].Squad, "ties broken by squad name")
}

func TestBuildClonesRecords(t *testing.T) {
	in := Assign(tableOf(rec("A", "X", "Left-Back", 900, 2700)), nil, cohortConfig())
	cs := Build(in, cohortConfig())
	cs[0].Table.Records[0].Set("Extra", model.Defined(1))
	assert.False(t, in.Records[0].Get("Extra").IsDefined())
}

func TestCombine(t *testing.T) {
	in := tableOf(
		rec("A", "X", "Left-Back", 900, 2700),
		rec("C", "Y", "Centre-Back", 900, 2700),
	)
	cs := Build(Assign(in, nil, cohortConfig()), cohortConfig())
	cs[1].Table.AddColumn("Aerial Ability", model.KindComposite)

	all := Combine(cs)
	assert.Len(t, all.Records, 2)
	assert.True(t, all.HasColumn("Aerial Ability"))
	assert.True(t, all.HasColumn(model.ColMinutes))
}

func TestBuildOtherListedInOrder(t *testing.T) {
	cfg := cohortConfig()
	cfg.Order = []string{"FB", model.GroupOther, "CB", "W"}
	in := tableOf(
		rec("A", "X", "Left-Back", 900, 2700),
		rec("M", "Y", "Mystery", 900, 2700),
	)
	cs := Build(Assign(in, nil, cfg), cfg)

	require.Len(t, cs, 2, "Other emitted once")
	assert.Equal(t, model.GroupOther, cs[1].Group)
	assert.Len(t, Combine(cs).Records, 2)
}
