package pocket

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulhankin/pocket/geom"
)

// arcChain returns a run of linear moves tracing the arc of radius r
// about c from angle a0 to a1 in n segments.
func arcChain(c geom.Vec2, r, a0, a1 float64, n int, z float64) []Move {
	pt := func(a float64) geom.Vec2 {
		return geom.Vec2{c[0] + r*math.Cos(a), c[1] + r*math.Sin(a)}
	}
	moves := make([]Move, 0, n)
	for i := 0; i < n; i++ {
		t0 := a0 + (a1-a0)*float64(i)/float64(n)
		t1 := a0 + (a1-a0)*float64(i+1)/float64(n)
		moves = append(moves, Move{
			Kind: Linear, Start: pt(t0), End: pt(t1), Z: z, Engagement: 1,
		})
	}
	return moves
}

// lineChain returns linear moves from a to b in n equal segments.
func lineChain(a, b geom.Vec2, n int, z float64) []Move {
	moves := make([]Move, 0, n)
	for i := 0; i < n; i++ {
		moves = append(moves, Move{
			Kind:  Linear,
			Start: a.Lerp(b, float64(i)/float64(n)),
			End:   a.Lerp(b, float64(i+1)/float64(n)),
			Z:     z, Engagement: 1,
		})
	}
	return moves
}

func TestFitArcsQuarterCircle(t *testing.T) {
	moves := arcChain(geom.Vec2{2, -3}, 10, 0, math.Pi/2, 18, -1)
	out := FitArcs(moves, 0.02)
	require.Len(t, out, 1)
	m := out[0]
	assert.Equal(t, ArcCCW, m.Kind)
	assert.InDelta(t, 10, m.Radius, 0.01)
	assert.InDelta(t, 2, m.Center[0], 0.01)
	assert.InDelta(t, -3, m.Center[1], 0.01)
	assert.Equal(t, moves[0].Start, m.Start)
	assert.Equal(t, moves[len(moves)-1].End, m.End)
	assert.Equal(t, -1.0, m.Z)
	assert.Equal(t, 1.0, m.Engagement)
}

func TestFitArcsClockwise(t *testing.T) {
	moves := arcChain(geom.Vec2{0, 0}, 5, math.Pi/2, 0, 12, -1)
	out := FitArcs(moves, 0.02)
	require.Len(t, out, 1)
	assert.Equal(t, ArcCW, out[0].Kind)
	assert.InDelta(t, 5, out[0].Radius, 0.01)
}

func TestFitArcsNeverFabricates(t *testing.T) {
	// an L corner: nothing here lies on a common circle within
	// tolerance, so the move list must come back unchanged
	moves := append(
		lineChain(geom.Vec2{0, 0}, geom.Vec2{10, 0}, 10, -1),
		lineChain(geom.Vec2{10, 0}, geom.Vec2{10, 10}, 10, -1)...,
	)
	out := FitArcs(moves, 0.02)
	require.True(t, reflect.DeepEqual(moves, out))
}

func TestFitArcsFullCircleSplits(t *testing.T) {
	// a closed circle (a trochoid loop) cannot be a single arc of a
	// full turn; it comes out as one big arc plus a closing segment
	moves := arcChain(geom.Vec2{0, 0}, 3, 0, 2*math.Pi, 24, -1)
	out := FitArcs(moves, 0.02)
	require.Len(t, out, 2)
	assert.Equal(t, ArcCCW, out[0].Kind)
	assert.Equal(t, Linear, out[1].Kind)
	assert.Equal(t, moves[0].Start, out[0].Start)
	assert.Equal(t, moves[len(moves)-1].End, out[1].End)
}

func TestFitArcsIdempotent(t *testing.T) {
	moves := arcChain(geom.Vec2{0, 0}, 10, 0, math.Pi/2, 18, -1)
	moves = append(moves, lineChain(geom.Vec2{0, 10}, geom.Vec2{-20, 10}, 15, -1)...)
	moves = append(moves, arcChain(geom.Vec2{-20, 5}, 5, math.Pi/2, math.Pi, 10, -1)...)

	out1 := FitArcs(moves, 0.02)
	out2 := FitArcs(out1, 0.02)
	require.True(t, reflect.DeepEqual(out1, out2))
	// and the fit actually found the arcs
	assert.Less(t, len(out1), len(moves))
}

func TestFitArcsPassThrough(t *testing.T) {
	moves := []Move{
		{Kind: Rapid, Start: geom.Vec2{0, 0}, End: geom.Vec2{10, 0}, Z: 5},
		{Kind: Linear, Start: geom.Vec2{10, 0}, End: geom.Vec2{10, 0}, Z: -1}, // plunge
		{Kind: Dwell, Start: geom.Vec2{10, 0}, End: geom.Vec2{10, 0}, Z: -1, DwellS: 0.2},
		{Kind: ArcCW, Start: geom.Vec2{10, 0}, End: geom.Vec2{0, 10}, Center: geom.Vec2{0, 0}, Radius: 10, Z: -1},
	}
	out := FitArcs(moves, 0.02)
	require.True(t, reflect.DeepEqual(moves, out))
}

func TestFitArcsSplitsOnZChange(t *testing.T) {
	// two quarter circles at different depths stay two arcs
	top := arcChain(geom.Vec2{0, 0}, 10, 0, math.Pi/2, 18, -1)
	deeper := arcChain(geom.Vec2{0, 0}, 10, math.Pi/2, math.Pi, 18, -2)
	out := FitArcs(append(top, deeper...), 0.02)
	require.Len(t, out, 2)
	assert.Equal(t, -1.0, out[0].Z)
	assert.Equal(t, -2.0, out[1].Z)
}

func TestFitCircle(t *testing.T) {
	pts := []geom.Vec2{}
	for i := 0; i < 8; i++ {
		a := 2 * math.Pi * float64(i) / 10
		pts = append(pts, geom.Vec2{4 + 7*math.Cos(a), -1 + 7*math.Sin(a)})
	}
	c, r, ok := fitCircle(pts)
	require.True(t, ok)
	assert.InDelta(t, 4, c[0], 1e-9)
	assert.InDelta(t, -1, c[1], 1e-9)
	assert.InDelta(t, 7, r, 1e-9)

	// collinear points have no circle
	_, _, _, winOK := arcWindow([]geom.Vec2{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}, 0.02)
	assert.False(t, winOK)
}
