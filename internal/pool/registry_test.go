package pool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRackLayout(t *testing.T) {
	f := newFakeOracle()
	r := NewRegistry(f)
	r.Rack()

	counts := map[Group]int{}
	var balls []*Ball
	for b := range r.All() {
		counts[b.Group]++
		balls = append(balls, b)
	}
	require.Len(t, balls, NumBalls)
	assert.Equal(t, 7, counts[GroupSolid])
	assert.Equal(t, 7, counts[GroupStripe])
	assert.Equal(t, 1, counts[GroupEight])
	assert.Equal(t, 1, counts[GroupCue])

	assert.Equal(t, BreakSpot, f.Position(r.Cue().Handle()))

	table := NewTable()
	for i, a := range balls {
		pa := f.Position(a.Handle())
		assert.True(t, table.Contains(pa))
		_, inPocket := table.PocketAt(pa)
		assert.False(t, inPocket, "ball %s racked in a pocket", a.ID)
		for _, b := range balls[i+1:] {
			d := pa.DistanceTo(f.Position(b.Handle()))
			assert.GreaterOrEqual(t, d, 2*BallRadius, "balls %s and %s overlap", a.ID, b.ID)
		}
	}

	eight := r.Ball(EightBall)
	assert.InDelta(t, RackApex.Y, f.Position(eight.Handle()).Y, 1e-3, "eight sits on the rack centre line")
	assert.InDelta(t, RackApex.X, f.Position(r.Ball(1).Handle()).X, 1e-3)
}

func TestRackReplacesLiveBodies(t *testing.T) {
	f := newFakeOracle()
	r := NewRegistry(f)
	r.Rack()
	r.Remove(4)
	r.Rack()

	assert.Len(t, f.bodies, NumBalls)
	assert.Len(t, f.removed, NumBalls)
	assert.True(t, r.Ball(4).OnTable())
}

func TestActiveIsRestartable(t *testing.T) {
	r := NewRegistry(newFakeOracle())
	r.Rack()
	r.Remove(2)
	r.Remove(Cue)

	collect := func() []BallID {
		var ids []BallID
		for b := range r.Active() {
			ids = append(ids, b.ID)
		}
		return ids
	}
	first := collect()
	assert.Len(t, first, 14)
	assert.Equal(t, first, collect())
	assert.NotContains(t, first, BallID(2))
	assert.NotContains(t, first, Cue)

	for b := range r.Active() {
		if b.ID == 5 {
			break
		}
	}
	assert.Len(t, collect(), 14)
}

func TestRemoveAndRespawnCue(t *testing.T) {
	f := newFakeOracle()
	r := NewRegistry(f)
	r.Rack()

	_, ok := r.RespawnCue()
	assert.False(t, ok, "cue still on table")

	f.bodies[r.Cue().Handle()].pos = Vec2{X: 990, Y: 490}
	require.True(t, r.Remove(Cue))
	assert.False(t, r.Remove(Cue), "already pocketed")
	assert.Equal(t, Vec2{X: 990, Y: 490}, r.Position(r.Cue()))

	cue, ok := r.RespawnCue()
	require.True(t, ok)
	assert.True(t, cue.OnTable())
	assert.Equal(t, BreakSpot, r.Position(cue))
	assert.Same(t, cue, r.Cue())
}

func TestPocketedCount(t *testing.T) {
	r := NewRegistry(newFakeOracle())
	r.Rack()
	r.Remove(1)
	r.Remove(7)
	r.Remove(9)
	r.Remove(EightBall)

	assert.Equal(t, 2, r.PocketedCount(GroupSolid))
	assert.Equal(t, 1, r.PocketedCount(GroupStripe))
	assert.Equal(t, 1, r.PocketedCount(GroupEight))
}

func TestIsInPocketIsStrict(t *testing.T) {
	table := NewTable()
	corner := table.Pockets()[0]

	assert.True(t, table.IsInPocket(Vec2{X: 10, Y: 10}, corner))
	assert.False(t, table.IsInPocket(Vec2{X: PocketRadius, Y: 0}, corner), "edge of the radius is outside")
	assert.True(t, table.IsInPocket(Vec2{X: PocketRadius - 0.001, Y: 0}, corner))

	p, ok := table.PocketAt(Vec2{X: 500, Y: 490})
	require.True(t, ok)
	assert.Equal(t, 4, p.ID)

	_, ok = table.PocketAt(Vec2{X: 500, Y: 250})
	assert.False(t, ok)
}

func TestTablePocketsAreCopies(t *testing.T) {
	table := NewTable()
	ps := table.Pockets()
	ps[0].Radius = 1000
	assert.Equal(t, PocketRadius, table.Pockets()[0].Radius)
	assert.Len(t, table.Rails(), 4)
}

func TestGroupOfAndLabels(t *testing.T) {
	cases := []struct {
		id    BallID
		group Group
		label string
	}{
		{Cue, GroupCue, "cue"},
		{1, GroupSolid, "1"},
		{7, GroupSolid, "7"},
		{EightBall, GroupEight, "8"},
		{9, GroupStripe, "9"},
		{15, GroupStripe, "15"},
	}
	for _, c := range cases {
		assert.Equal(t, c.group, GroupOf(c.id), "group of %d", c.id)
		assert.Equal(t, c.label, c.id.Label())
		id, ok := ParseLabel(c.label)
		assert.True(t, ok)
		assert.Equal(t, c.id, id)
	}

	for _, bad := range []string{"wall", "0", "16", "", "-1"} {
		_, ok := ParseLabel(bad)
		assert.False(t, ok, "label %q", bad)
	}
	assert.Equal(t, GroupNone, GroupOf(NoBall))
	assert.Equal(t, GroupNone, GroupEight.Complement())
}

func TestSnapshotJSONGroupNames(t *testing.T) {
	tt := newTestTable(t, PocketPolicyFirst)
	tt.assign(GroupStripe, 1)

	raw, err := json.Marshal(tt.s.Snapshot())
	require.NoError(t, err)

	var back Snapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, GroupStripe, back.Players[0].Group)
	assert.Equal(t, GroupSolid, back.Players[1].Group)
	assert.Contains(t, string(raw), `"group":"Stripes"`)
	assert.Len(t, back.Balls, NumBalls)
}

func TestParsePocketPolicy(t *testing.T) {
	assert.Equal(t, PocketPolicyAll, ParsePocketPolicy("all"))
	assert.Equal(t, PocketPolicyFirst, ParsePocketPolicy("first"))
	assert.Equal(t, PocketPolicyFirst, ParsePocketPolicy("bogus"))
}
