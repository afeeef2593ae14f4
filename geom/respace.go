package geom

import "math"

// circumradius returns the radius of the circle through a, b and c,
// or +Inf if the points are collinear.
func circumradius(a, b, c Vec2) float64 {
	ab := b.Sub(a)
	bc := c.Sub(b)
	ca := a.Sub(c)
	cross := math.Abs(ab.Cross(bc))
	if cross < 1e-12 {
		return math.Inf(1)
	}
	return ab.Norm() * bc.Norm() * ca.Norm() / (2 * cross)
}

// chordSpacing returns the longest chord whose deviation from an arc
// of radius r stays within tol.
func chordSpacing(r, tol float64) float64 {
	if math.IsInf(r, 1) {
		return math.Inf(1)
	}
	if tol >= r {
		return 2 * r
	}
	return 2 * math.Sqrt(tol*(2*r-tol))
}

// Respace resamples the loop so that every edge is short enough for
// per-vertex sampling downstream: runs of nearly-collinear points
// within tol of a straight line are collapsed first, then edges
// crossing tight curvature are subdivided and straight edges are
// capped at maxSpacing (pass 0 for no cap). Simplification runs
// before densification so input noise does not skew the curvature
// estimates, and so the spacing bound survives to the output.
func (l Loop) Respace(tol, maxSpacing float64) Loop {
	if len(l.V) < 3 || tol <= 0 {
		return l
	}
	if maxSpacing <= 0 {
		maxSpacing = math.Inf(1)
	}

	v := simplifyClosed(l.V, tol)
	if len(v) < 3 {
		return Loop{V: v}
	}

	var out []Vec2
	n := len(v)
	for i := 0; i < n; i++ {
		a := v[i]
		b := v[(i+1)%n]
		ra := circumradius(v[(i-1+n)%n], a, b)
		rb := circumradius(a, b, v[(i+2)%n])
		s := math.Min(maxSpacing, math.Min(chordSpacing(ra, tol), chordSpacing(rb, tol)))
		out = append(out, a)
		d := a.Dist(b)
		if d > s {
			k := int(math.Ceil(d / s))
			for j := 1; j < k; j++ {
				out = append(out, a.Lerp(b, float64(j)/float64(k)))
			}
		}
	}
	return Loop{V: out}
}

func vec2linedist(v, s, e Vec2) float64 {
	ds := v.Dist(s)
	de := v.Dist(e)
	n := Vec2{e[1] - s[1], s[0] - e[0]}.Unit()
	dp := math.Abs(v.Sub(s).Dot(n))
	return math.Min(math.Min(dp, ds), de)
}

// simplifyOpen removes interior points that are within tol of the
// simplified polyline, Douglas-Peucker style.
func simplifyOpen(v []Vec2, tol float64) []Vec2 {
	if len(v) <= 2 {
		return v
	}
	worst := 0
	worstD := 0.0
	for i := 1; i < len(v)-1; i++ {
		d := vec2linedist(v[i], v[0], v[len(v)-1])
		if d > worstD {
			worst = i
			worstD = d
		}
	}
	if worstD <= tol {
		return []Vec2{v[0], v[len(v)-1]}
	}
	lefts := simplifyOpen(v[:worst+1], tol)
	rights := simplifyOpen(v[worst:], tol)
	return append(lefts, rights[1:]...)
}

// simplifyClosed simplifies a closed vertex ring by splitting it at
// its two most distant vertices and simplifying each half.
func simplifyClosed(v []Vec2, tol float64) []Vec2 {
	if len(v) <= 4 {
		return v
	}
	// split at vertex 0 and the vertex farthest from it
	far := 0
	farD := 0.0
	for i := 1; i < len(v); i++ {
		if d := v[0].Dist(v[i]); d > farD {
			far = i
			farD = d
		}
	}
	a := simplifyOpen(v[:far+1], tol)
	back := append(append([]Vec2{}, v[far:]...), v[0])
	b := simplifyOpen(back, tol)
	out := append(a, b[1:len(b)-1]...)
	return out
}
