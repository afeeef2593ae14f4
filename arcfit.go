package pocket

import (
	"math"

	"github.com/paulhankin/pocket/geom"
)

// Arc fitting limits. Arcs flatter than rMax behave like lines and
// gain nothing from G2/G3; windows shorter than minArcPts give the
// least-squares fit too little evidence to trust.
const (
	arcRMax     = 1e5
	arcMinPts   = 5
	arcMaxSweep = 2*math.Pi - 1e-3
)

// fitCircle computes the least-squares circle through the points
// (Kasa fit). ok is false for degenerate (collinear or coincident)
// configurations.
func fitCircle(pts []geom.Vec2) (center geom.Vec2, r float64, ok bool) {
	n := float64(len(pts))
	var sx, sy, sxx, syy, sxy, sxz, syz, sz float64
	for _, p := range pts {
		x, y := p[0], p[1]
		z := x*x + y*y
		sx += x
		sy += y
		sxx += x * x
		syy += y * y
		sxy += x * y
		sxz += x * z
		syz += y * z
		sz += z
	}
	// solve for center (a, b) and c in x^2+y^2 = 2ax + 2by + c
	m11, m12, m13 := 2*sxx, 2*sxy, sx
	m21, m22, m23 := 2*sxy, 2*syy, sy
	m31, m32, m33 := 2*sx, 2*sy, n
	det := m11*(m22*m33-m23*m32) - m12*(m21*m33-m23*m31) + m13*(m21*m32-m22*m31)
	if math.Abs(det) < 1e-12 {
		return geom.Vec2{}, 0, false
	}
	a := (sxz*(m22*m33-m23*m32) - m12*(syz*m33-m23*sz) + m13*(syz*m32-m22*sz)) / det
	b := (m11*(syz*m33-m23*sz) - sxz*(m21*m33-m23*m31) + m13*(m21*sz-syz*m31)) / det
	c := (m11*(m22*sz-syz*m32) - m12*(m21*sz-syz*m31) + sxz*(m21*m32-m22*m31)) / det
	r2 := c + a*a + b*b
	if r2 <= 0 {
		return geom.Vec2{}, 0, false
	}
	return geom.Vec2{a, b}, math.Sqrt(r2), true
}

// arcWindow checks whether the points lie on a common arc within
// tol: every point within tol of the fitted circle, angles strictly
// monotone in one direction, and total sweep below a full turn.
// dirCCW reports the arc direction when ok.
func arcWindow(pts []geom.Vec2, tol float64) (center geom.Vec2, r float64, dirCCW, ok bool) {
	if len(pts) < arcMinPts {
		return geom.Vec2{}, 0, false, false
	}
	center, r, ok = fitCircle(pts)
	if !ok || r > arcRMax || r < 2*tol {
		return geom.Vec2{}, 0, false, false
	}
	for _, p := range pts {
		if math.Abs(p.Dist(center)-r) > tol {
			return geom.Vec2{}, 0, false, false
		}
	}
	sweep := 0.0
	sign := 0.0
	prev := math.Atan2(pts[0][1]-center[1], pts[0][0]-center[0])
	for _, p := range pts[1:] {
		a := math.Atan2(p[1]-center[1], p[0]-center[0])
		d := a - prev
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d < -math.Pi {
			d += 2 * math.Pi
		}
		if d == 0 {
			return geom.Vec2{}, 0, false, false
		}
		if sign == 0 {
			sign = math.Copysign(1, d)
		} else if math.Copysign(1, d) != sign {
			return geom.Vec2{}, 0, false, false
		}
		sweep += math.Abs(d)
		prev = a
	}
	if sweep > arcMaxSweep {
		return geom.Vec2{}, 0, false, false
	}
	return center, r, sign > 0, true
}

// fitRun greedily replaces runs of points lying on a common circle
// with arc moves, emitting linear moves otherwise. z and engagement
// are carried onto the produced moves.
func fitRun(pts []geom.Vec2, eng []float64, z, tol float64) []Move {
	var out []Move
	i := 0
	for i < len(pts)-1 {
		bestJ := -1
		var bestC geom.Vec2
		var bestR float64
		var bestCCW bool
		for j := i + arcMinPts - 1; j < len(pts); j++ {
			c, r, ccw, ok := arcWindow(pts[i:j+1], tol)
			if !ok {
				break
			}
			bestJ, bestC, bestR, bestCCW = j, c, r, ccw
		}
		if bestJ >= 0 {
			kind := ArcCW
			if bestCCW {
				kind = ArcCCW
			}
			maxEng := 0.0
			for k := i + 1; k <= bestJ; k++ {
				if eng[k] > maxEng {
					maxEng = eng[k]
				}
			}
			out = append(out, Move{
				Kind:       kind,
				Start:      pts[i],
				End:        pts[bestJ],
				Center:     bestC,
				Radius:     bestR,
				Z:          z,
				Engagement: maxEng,
			})
			i = bestJ
			continue
		}
		out = append(out, Move{
			Kind:       Linear,
			Start:      pts[i],
			End:        pts[i+1],
			Z:          z,
			Engagement: eng[i+1],
		})
		i++
	}
	return out
}

// FitArcs replaces runs of nearly-cocircular linear moves with true
// arc moves within the chord error tolerance. Non-linear moves (and
// plunges, which have no XY extent) pass through untouched, so
// applying FitArcs to its own output is a no-op. A run whose fit
// residual exceeds the tolerance stays linear: the fitter never
// fabricates an arc.
func FitArcs(moves []Move, chordErr float64) []Move {
	var out []Move
	i := 0
	for i < len(moves) {
		m := moves[i]
		if m.Kind != Linear || m.Start == m.End {
			out = append(out, m)
			i++
			continue
		}
		// maximal run of contiguous XY linear moves at one height
		j := i
		pts := []geom.Vec2{m.Start}
		eng := []float64{m.Engagement}
		for j < len(moves) && moves[j].Kind == Linear &&
			moves[j].Z == m.Z && moves[j].Start != moves[j].End &&
			moves[j].Start == pts[len(pts)-1] {
			pts = append(pts, moves[j].End)
			eng = append(eng, moves[j].Engagement)
			j++
		}
		out = append(out, fitRun(pts, eng, m.Z, chordErr)...)
		i = j
	}
	return out
}
