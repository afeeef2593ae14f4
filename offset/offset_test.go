package offset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulhankin/pocket/geom"
)

func square(x, y, s float64) geom.Loop {
	return geom.Loop{V: []geom.Vec2{{x, y}, {x + s, y}, {x + s, y + s}, {x, y + s}}}
}

func TestFamilyMonotonicArea(t *testing.T) {
	r := geom.Region{Outer: square(0, 0, 100)}
	distances := []float64{3, 5.7, 8.4, 11.1, 13.8}
	fam, err := Region(r, distances, Options{})
	require.NoError(t, err)
	require.Len(t, fam.Levels, len(distances))

	prev := math.Inf(1)
	for i, lv := range fam.Levels {
		assert.Equal(t, distances[i], lv.Depth)
		require.Len(t, lv.Loops, 1, "level %d", i)
		a := lv.Area()
		assert.Less(t, a, prev, "level %d area must shrink", i)
		prev = a
	}
	// an inward square offset keeps sharp corners, so the first level
	// is the 94mm square
	assert.InDelta(t, 94*94, fam.Levels[0].Area(), 1.0)
}

func TestIslandClearance(t *testing.T) {
	r := geom.Region{
		Outer:   square(0, 0, 60),
		Islands: []geom.Loop{square(25, 25, 10)},
	}
	const d = 4.0
	fam, err := Region(r, []float64{d}, Options{})
	require.NoError(t, err)
	require.Len(t, fam.Levels, 1)
	// the level must be an annulus: one shrunk outer, one grown island
	require.Len(t, fam.Levels[0].Loops, 2)

	boundary := append([]geom.Loop{r.Outer}, r.Islands...)
	for _, l := range fam.Levels[0].Loops {
		for _, v := range l.V {
			assert.GreaterOrEqual(t, geom.DistToLoops(v, boundary), d-0.05)
		}
	}
}

func TestCollapseInnerPass(t *testing.T) {
	r := geom.Region{Outer: square(0, 0, 10)}
	fam, err := Region(r, []float64{3, 4, 6}, Options{})
	require.Error(t, err)
	var gerr *geom.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, geom.Degenerate, gerr.Kind)
	assert.Equal(t, 2, gerr.Pass)
	// the family built before the collapse is still returned
	require.NotNil(t, fam)
	assert.Len(t, fam.Levels, 2)
}

func TestCollapseFirstPass(t *testing.T) {
	r := geom.Region{Outer: square(0, 0, 4)}
	fam, err := Region(r, []float64{3}, Options{})
	require.Error(t, err)
	var gerr *geom.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, geom.Degenerate, gerr.Kind)
	assert.Equal(t, 0, gerr.Pass)
	assert.Empty(t, fam.Levels)
}

func TestMonotonicViolationIsStructured(t *testing.T) {
	err := monotonic(3, 50, 40)
	require.Error(t, err)
	var gerr *geom.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, geom.NonMonotonic, gerr.Kind)
	assert.Equal(t, 3, gerr.Pass)
	assert.Contains(t, err.Error(), "did not shrink")

	assert.NoError(t, monotonic(3, 30, 40))
}

func TestDistancesMustIncrease(t *testing.T) {
	r := geom.Region{Outer: square(0, 0, 100)}
	for _, distances := range [][]float64{{3, 2}, {0, 1}, {-1}, {3, 3}} {
		_, err := Region(r, distances, Options{})
		assert.Error(t, err, "distances %v", distances)
	}
}

func TestRejectsInvalidRegion(t *testing.T) {
	bowtie := geom.Loop{V: []geom.Vec2{{0, 0}, {10, 10}, {10, 0}, {0, 10}}}
	_, err := Region(geom.Region{Outer: bowtie}, []float64{1}, Options{})
	require.Error(t, err)
	var gerr *geom.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, geom.InvalidInput, gerr.Kind)
}

func TestWindingNormalized(t *testing.T) {
	// a clockwise outer loop offsets the same as a counter-clockwise one
	ccw := geom.Region{Outer: square(0, 0, 50)}
	cw := geom.Region{Outer: square(0, 0, 50).Reversed()}
	famA, err := Region(ccw, []float64{5}, Options{})
	require.NoError(t, err)
	famB, err := Region(cw, []float64{5}, Options{})
	require.NoError(t, err)
	assert.InDelta(t, famA.Levels[0].Area(), famB.Levels[0].Area(), 1e-6)
}

func TestClearedArea(t *testing.T) {
	// a round tool leaves (4-pi)r^2 of residue in the four corners of
	// a square pocket
	r := geom.Region{Outer: square(0, 0, 100)}
	const toolR = 3.0
	got, err := ClearedArea(r, 0, toolR, Options{})
	require.NoError(t, err)
	want := 100*100 - (4-math.Pi)*toolR*toolR
	assert.InDelta(t, want, got, 1.0)

	// a pocket the tool cannot enter clears nothing
	tiny := geom.Region{Outer: square(0, 0, 2)}
	got, err = ClearedArea(tiny, 0, toolR, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}
