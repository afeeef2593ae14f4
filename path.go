package pocket

import (
	"math"

	"github.com/paulhankin/pocket/geom"
	"github.com/paulhankin/pocket/offset"
)

// A PathPoint is one vertex of the ordered toolpath. Engagement is
// the radial depth of cut arriving at this point. Rapid marks points
// reached by a positioning move rather than a cut.
type PathPoint struct {
	P          geom.Vec2
	Engagement float64
	Rapid      bool
}

// An OrderedPath is the toolpath as a point sequence, in strict
// execution order, before moves are materialized.
type OrderedPath struct {
	Pts []PathPoint
}

// engagementAt estimates the radial depth of cut at p when cutting
// level k of the family. The material boundary is the previous
// level's contours: the nominal distance between adjacent contours
// is the stepover, but at concave corners the contours diverge and
// the tool bites deeper. The outermost level has no cleared
// neighbor, so it slots at full tool diameter.
func engagementAt(p geom.Vec2, fam *offset.Family, level int, toolD float64) float64 {
	if level == 0 {
		return toolD
	}
	d := geom.DistToLoops(p, fam.Levels[level-1].Loops)
	if d > toolD {
		return toolD
	}
	return d
}

// rotated returns the loop's vertices as a closed point sequence
// (n+1 points) beginning and ending at vertex start.
func rotated(l geom.Loop, start int) []geom.Vec2 {
	n := len(l.V)
	out := make([]geom.Vec2, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, l.V[(start+i)%n])
	}
	return out
}

// nearestEntry returns the loop vertex nearest to cur. Candidates
// equidistant within floating epsilon are broken by preferring the
// entry whose outgoing direction deviates least from the current
// heading, which keeps the cutting direction consistent.
func nearestEntry(cur, heading geom.Vec2, l geom.Loop) (idx int, dist float64) {
	const eps = 1e-9
	n := len(l.V)
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		if d := cur.Dist(l.V[i]); d < best {
			best = d
		}
	}
	idx = -1
	bestTurn := math.Inf(1)
	for i := 0; i < n; i++ {
		if cur.Dist(l.V[i]) > best+eps {
			continue
		}
		out := l.V[(i+1)%n].Sub(l.V[i]).Unit()
		turn := 1 - heading.Dot(out) // 0 when straight ahead, 2 when reversed
		if idx < 0 || turn < bestTurn {
			idx = i
			bestTurn = turn
		}
	}
	return idx, best
}

// buildPath links the offset family into an ordered toolpath using
// the configured strategy. Loops are respaced first so that chord
// deviation stays within the smoothing tolerance. Winding is kept as
// the offset engine produced it (outer contours counter-clockwise,
// island contours clockwise) so the uncut wall side is always to the
// right of travel. Levels run outermost to innermost; within a level,
// loops are taken nearest first.
func buildPath(fam *offset.Family, p Params) OrderedPath {
	var path OrderedPath
	var cur geom.Vec2
	heading := geom.Vec2{1, 0}
	started := false

	// a spiral link longer than this abandons the continuous path
	// and rapids instead: it would cut across already-cleared or
	// uncut-out-of-order material
	linkMax := 2*p.step() + p.SmoothingTol

	for li := range fam.Levels {
		loops := make([]geom.Loop, 0, len(fam.Levels[li].Loops))
		for _, l := range fam.Levels[li].Loops {
			// a loop much smaller than the tolerance can respace away
			// entirely; keep its original sampling so it still gets cut
			if rl := l.Respace(p.SmoothingTol, p.step()); len(rl.V) >= 3 {
				l = rl
			}
			if len(l.V) >= 3 {
				loops = append(loops, l)
			}
		}
		remaining := loops
		for len(remaining) > 0 {
			bestLoop := 0
			bestIdx := 0
			bestDist := math.Inf(1)
			for i, l := range remaining {
				idx, d := nearestEntry(cur, heading, l)
				if d < bestDist {
					bestLoop, bestIdx, bestDist = i, idx, d
				}
			}
			l := remaining[bestLoop]
			remaining = append(remaining[:bestLoop], remaining[bestLoop+1:]...)

			rapid := true
			if started && p.Strategy == Spiral && bestDist <= linkMax {
				rapid = false
			}
			pts := rotated(l, bestIdx)
			for i, v := range pts {
				pp := PathPoint{
					P:          v,
					Engagement: engagementAt(v, fam, li, p.ToolDiameter),
				}
				if i == 0 {
					pp.Rapid = rapid || !started
					if !pp.Rapid {
						// the link segment cuts across the step gap
						pp.Engagement = math.Max(pp.Engagement, p.step())
					}
				}
				path.Pts = append(path.Pts, pp)
			}
			cur = pts[len(pts)-1]
			heading = pts[len(pts)-1].Sub(pts[len(pts)-2]).Unit()
			started = true
		}
	}
	return path
}
