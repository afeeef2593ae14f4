package pocket

import (
	"math"

	"github.com/paulhankin/pocket/geom"
)

// polylineWalker steps along a point sequence by arc length.
type polylineWalker struct {
	pts  []geom.Vec2
	seg  int
	into float64 // distance already travelled into segment seg
}

// advance moves d mm along the polyline and returns the new position
// and the local travel direction. Walking past the end pins to the
// final point.
func (w *polylineWalker) advance(d float64) (geom.Vec2, geom.Vec2) {
	for w.seg < len(w.pts)-1 {
		a, b := w.pts[w.seg], w.pts[w.seg+1]
		l := a.Dist(b)
		if w.into+d <= l {
			w.into += d
			return a.Lerp(b, w.into/l), b.Sub(a).Unit()
		}
		d -= l - w.into
		w.into = 0
		w.seg++
	}
	last := w.pts[len(w.pts)-1]
	var dir geom.Vec2
	if len(w.pts) >= 2 {
		dir = last.Sub(w.pts[len(w.pts)-2]).Unit()
	}
	return last, dir
}

func polylineLength(pts []geom.Vec2) float64 {
	d := 0.0
	for i := 1; i < len(pts); i++ {
		d += pts[i-1].Dist(pts[i])
	}
	return d
}

// circlePoints samples a full counter-clockwise circle around c,
// starting and ending at the angle facing from. The angular step is
// chosen so the chords stay within tol of the circle.
func circlePoints(c geom.Vec2, r, tol float64, from geom.Vec2) []geom.Vec2 {
	a0 := math.Atan2(from[1]-c[1], from[0]-c[0])
	var dth float64
	if tol >= r {
		dth = math.Pi / 4
	} else {
		dth = 2 * math.Acos(1-tol/r)
	}
	n := int(math.Ceil(2 * math.Pi / dth))
	if n < 8 {
		n = 8
	}
	pts := make([]geom.Vec2, 0, n+1)
	for i := 0; i <= n; i++ {
		a := a0 + 2*math.Pi*float64(i)/float64(n)
		pts = append(pts, geom.Vec2{c[0] + r*math.Cos(a), c[1] + r*math.Sin(a)})
	}
	return pts
}

// insertTrochoids replaces straight traversal of over-engaged path
// sections with small circular loops that advance one pitch per
// revolution, bounding the instantaneous radial engagement at the
// threshold. Engagement is read from the path points, which carry
// the measured distance to the previous contour, not a constant
// assumption. A threshold percent outside (0, 100) disables the
// stage.
//
// Over-engaged runs include link segments between contours, which can
// travel in any direction, so no side of travel is assumed clear.
// Every relief circle is verified against the pocket walls before it
// is emitted: the tool center must keep the margin plus tool radius
// clearance everywhere on the loop. The preferred side or radius is
// shrunk until a safe circle fits; where none fits, the station
// passes through on the track.
func insertTrochoids(path OrderedPath, p Params, walls []geom.Loop) OrderedPath {
	if p.TrochoidThresholdPct <= 0 || p.TrochoidThresholdPct >= 100 {
		return path
	}
	threshold := p.TrochoidThresholdPct / 100 * p.ToolDiameter
	pitch := threshold
	toolR := p.ToolDiameter / 2

	// clearance the tool center must keep from a wall, with slack for
	// the offsetter's own tolerance
	clearance := p.Margin + toolR - p.SmoothingTol - 1e-9
	safe := func(c geom.Vec2, r float64) bool {
		if len(walls) == 0 {
			return true
		}
		if !walls[0].Contains(c) {
			return false
		}
		for _, w := range walls[1:] {
			if w.Contains(c) {
				return false
			}
		}
		return geom.DistToLoops(c, walls)-r >= clearance
	}

	over := func(i int) bool {
		return i > 0 && !path.Pts[i].Rapid &&
			path.Pts[i].Engagement > threshold+1e-9
	}

	var out OrderedPath
	i := 0
	for i < len(path.Pts) {
		if !over(i) {
			out.Pts = append(out.Pts, path.Pts[i])
			i++
			continue
		}
		// maximal over-engaged run: points i-1 .. j
		j := i
		maxEng := 0.0
		for j < len(path.Pts) && over(j) {
			if path.Pts[j].Engagement > maxEng {
				maxEng = path.Pts[j].Engagement
			}
			j++
		}
		run := make([]geom.Vec2, 0, j-i+1)
		run = append(run, path.Pts[i-1].P)
		for k := i; k < j; k++ {
			run = append(run, path.Pts[k].P)
		}

		r := (maxEng-threshold)/2 + pitch/2
		if r > toolR {
			r = toolR
		}
		if r < pitch/2 {
			r = pitch / 2
		}

		total := polylineLength(run)
		w := &polylineWalker{pts: run}
		cur := run[0]
		for travelled := pitch; travelled <= total+pitch/2; travelled += pitch {
			c0, dir := w.advance(pitch)
			placed := false
			for _, rr := range []float64{r, (r + pitch/2) / 2, pitch / 2} {
				// circles sit tangent to the track; try the left of
				// travel first, then the right
				for _, side := range []float64{1, -1} {
					c := geom.Vec2{c0[0] - side*dir[1]*rr, c0[1] + side*dir[0]*rr}
					if !safe(c, rr) {
						continue
					}
					for _, cp := range circlePoints(c, rr, p.SmoothingTol, cur) {
						out.Pts = append(out.Pts, PathPoint{P: cp, Engagement: threshold})
						cur = cp
					}
					placed = true
					break
				}
				if placed {
					break
				}
			}
			if !placed {
				// too close to a wall for any relief loop; stay on the
				// track and let the feed planner see the true load
				out.Pts = append(out.Pts, PathPoint{P: c0, Engagement: maxEng})
				cur = c0
			}
		}
		// land on the run's true endpoint so the downstream path is
		// unchanged
		end := run[len(run)-1]
		if cur.Dist(end) > 1e-9 {
			out.Pts = append(out.Pts, PathPoint{P: end, Engagement: threshold})
		}
		i = j
	}
	return out
}
