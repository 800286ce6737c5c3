package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/schedule"
)

// scenarioA is a timed activity, a free activity, a Lunch marker at 12:30,
// then another free activity.
func scenarioA() schedule.Day {
	return dayOf([]schedule.Item{
		act("a", 1, "09:00"),
		act("b", 2, ""),
		marker("tb", 3, "Lunch", "12:30"),
		act("c", 4, ""),
	})
}

// ---- BuildGroups -----------------------------------------------------------

func TestBuildGroups_ScenarioA(t *testing.T) {
	groups := scenarioA().Groups()

	assert.Equal(t, [][]string{{"a"}, {"b"}, {"tb"}, {"c"}}, groupIDs(groups))
	assert.Equal(t, []bool{true, false, true, false}, lockedFlags(groups))
}

func TestBuildGroups_FreeRunsMerge(t *testing.T) {
	items := []schedule.Item{act("a", 1, ""), act("b", 2, ""), act("c", 3, "10:00"), act("d", 4, ""), act("e", 5, "")}

	groups := schedule.BuildGroups(items, map[string]bool{"c": true})

	assert.Equal(t, [][]string{{"a", "b"}, {"c"}, {"d", "e"}}, groupIDs(groups))
}

func TestBuildGroups_Empty(t *testing.T) {
	assert.Empty(t, schedule.BuildGroups(nil, nil))
}

func TestBuildGroups_VisitsEveryItemOnceInOrder(t *testing.T) {
	cases := [][]schedule.Item{
		{act("a", 1, "")},
		{act("a", 1, "08:00"), act("b", 2, "09:00")},
		{marker("m1", 1, "Start", ""), marker("m2", 2, "Next", ""), act("a", 3, "")},
		{act("a", 1, ""), leg("t", "11:00"), act("b", 3, ""), marker("m", 4, "x", ""), act("c", 5, "15:00")},
	}
	for _, items := range cases {
		d := dayOf(items)
		var flat []string
		for _, g := range d.Groups() {
			require.NotEmpty(t, g.Items)
			flat = append(flat, ids(g.Items)...)
		}
		assert.Equal(t, ids(items), flat)
	}
}

// ---- lock derivation -------------------------------------------------------

func TestLocked_DependsOnlyOnTime(t *testing.T) {
	p := act("p", 1, "10:00")
	p.State = "potential"
	assert.True(t, p.Locked())
	assert.True(t, act("a", 99, "10:00").Locked())
	assert.False(t, act("a", 1, "").Locked())
	assert.True(t, leg("t", "07:15").Locked())
	assert.False(t, leg("t", "").Locked())
	assert.False(t, marker("m", 1, "Lunch", "12:00").Locked())
}

func TestLocked_UnchangedByMove(t *testing.T) {
	d := dayOf([]schedule.Item{act("a", 1, "09:00"), act("b", 2, ""), act("c", 3, "")})
	before := d.LockedIDs()

	moved, err := d.Reorder("a", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(moved.Scheduled))
	assert.Equal(t, before, moved.LockedIDs())
}

// ---- GroupLabel ------------------------------------------------------------

func TestGroupLabel_ScenarioA(t *testing.T) {
	groups := scenarioA().Groups()

	assert.Equal(t, "09:00", schedule.GroupLabel(groups, 0))
	assert.Equal(t, schedule.LabelMorning, schedule.GroupLabel(groups, 1))
	assert.Equal(t, "Lunch · 12:30", schedule.GroupLabel(groups, 2))
	assert.Equal(t, "Lunch · 12:30", schedule.GroupLabel(groups, 3))
}

func TestGroupLabel_NoLockedGroups(t *testing.T) {
	groups := dayOf([]schedule.Item{act("a", 1, ""), act("b", 2, "")}).Groups()

	assert.Equal(t, schedule.LabelFlexible, schedule.GroupLabel(groups, 0))
}

func TestGroupLabel_OpenEnded(t *testing.T) {
	afterEvening := dayOf([]schedule.Item{act("a", 1, "18:00"), act("b", 2, "")}).Groups()
	beforeMorning := dayOf([]schedule.Item{act("a", 1, ""), act("b", 2, "08:00")}).Groups()
	afterLate := dayOf([]schedule.Item{act("a", 1, "22:00"), act("b", 2, "")}).Groups()

	// (18:00 + 24:00) / 2 = 21:00
	assert.Equal(t, schedule.LabelEvening, schedule.GroupLabel(afterEvening, 1))
	// 08:00 / 2 = 04:00
	assert.Equal(t, schedule.LabelMorning, schedule.GroupLabel(beforeMorning, 0))
	// (22:00 + 24:00) / 2 = 23:00
	assert.Equal(t, schedule.LabelNight, schedule.GroupLabel(afterLate, 1))
}

func TestGroupLabel_MidpointBetweenNeighbours(t *testing.T) {
	groups := dayOf([]schedule.Item{act("a", 1, "12:00"), act("b", 2, ""), act("c", 3, "16:00")}).Groups()

	assert.Equal(t, schedule.LabelMidday, schedule.GroupLabel(groups, 1))
}

func TestGroupLabel_UnparseableNeighbourIsSkipped(t *testing.T) {
	groups := dayOf([]schedule.Item{act("x", 1, "19:00"), act("a", 2, "soon"), act("b", 3, "")}).Groups()

	assert.Equal(t, "soon", schedule.GroupLabel(groups, 1))
	// falls back to 19:00 as the previous time: (19:00 + 24:00) / 2 = 21:30
	assert.Equal(t, schedule.LabelNight, schedule.GroupLabel(groups, 2))
}

func TestGroupLabel_LockGlyphWithoutTime(t *testing.T) {
	items := []schedule.Item{act("a", 1, "")}
	groups := schedule.BuildGroups(items, map[string]bool{"a": true})

	assert.Equal(t, schedule.LockGlyph, schedule.GroupLabel(groups, 0))
}

func TestGroupLabel_OutOfRange(t *testing.T) {
	groups := scenarioA().Groups()
	assert.Empty(t, schedule.GroupLabel(groups, -1))
	assert.Empty(t, schedule.GroupLabel(groups, len(groups)))
}

func TestGroupLabel_Deterministic(t *testing.T) {
	groups := scenarioA().Groups()
	for i := range groups {
		assert.Equal(t, schedule.GroupLabel(groups, i), schedule.GroupLabel(groups, i))
	}
}

func TestSlotLabel_Boundaries(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, schedule.LabelMorning},
		{11*60 + 59, schedule.LabelMorning},
		{12 * 60, schedule.LabelMidday},
		{16*60 + 59, schedule.LabelMidday},
		{17 * 60, schedule.LabelEvening},
		{21 * 60, schedule.LabelEvening},
		{21*60 + 1, schedule.LabelNight},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, schedule.SlotLabel(tc.minutes), "minutes=%d", tc.minutes)
	}
}

// ---- CanDeleteGroup --------------------------------------------------------

func TestCanDeleteGroup_SoleFreeGroup(t *testing.T) {
	groups := dayOf([]schedule.Item{act("a", 1, ""), act("b", 2, "")}).Groups()

	assert.False(t, schedule.CanDeleteGroup(groups, 0))
}

func TestCanDeleteGroup_SectionsSplitByLockedItems(t *testing.T) {
	groups := dayOf([]schedule.Item{act("a", 1, ""), act("l", 2, "10:00"), act("b", 3, "")}).Groups()

	assert.False(t, schedule.CanDeleteGroup(groups, 0))
	assert.True(t, schedule.CanDeleteGroup(groups, 1))
	assert.False(t, schedule.CanDeleteGroup(groups, 2))
}

func TestCanDeleteGroup_MarkersStayInsideSection(t *testing.T) {
	groups := dayOf([]schedule.Item{act("a", 1, ""), marker("m", 2, "Lunch", ""), act("b", 3, "")}).Groups()

	assert.True(t, schedule.CanDeleteGroup(groups, 0))
	assert.True(t, schedule.CanDeleteGroup(groups, 1))
	assert.True(t, schedule.CanDeleteGroup(groups, 2))
}

func TestCanDeleteGroup_OutOfRange(t *testing.T) {
	groups := scenarioA().Groups()
	assert.False(t, schedule.CanDeleteGroup(groups, -1))
	assert.False(t, schedule.CanDeleteGroup(groups, 9))
}
