package geom

import "math"

// A Loop is a closed sequence of vertices. The edge from the last
// vertex back to the first is implied; the first vertex is not
// repeated at the end.
type Loop struct {
	V []Vec2
}

// A Region is one outer loop plus zero or more island loops fully
// contained within it. The engine cuts the area inside the outer
// loop and outside every island.
type Region struct {
	Outer   Loop
	Islands []Loop
}

// Area returns the signed area of the loop. Counter-clockwise
// loops have positive area.
func (l Loop) Area() float64 {
	a := 0.0
	n := len(l.V)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += l.V[i].Cross(l.V[j])
	}
	return a / 2
}

// CCW reports whether the loop winds counter-clockwise.
func (l Loop) CCW() bool {
	return l.Area() > 0
}

// Reversed returns the loop with its winding direction flipped.
func (l Loop) Reversed() Loop {
	r := Loop{V: make([]Vec2, len(l.V))}
	for i, v := range l.V {
		r.V[len(l.V)-1-i] = v
	}
	return r
}

// Perimeter returns the total edge length of the loop.
func (l Loop) Perimeter() float64 {
	d := 0.0
	n := len(l.V)
	for i := 0; i < n; i++ {
		d += l.V[i].Dist(l.V[(i+1)%n])
	}
	return d
}

// Bounds returns the axis-aligned bounding box of the loop.
// A loop with no vertices has zero bounds.
func (l Loop) Bounds() Bounds {
	if len(l.V) == 0 {
		return Bounds{}
	}
	inf := math.Inf(1)
	min := Vec2{inf, inf}
	max := Vec2{-inf, -inf}
	for _, v := range l.V {
		min[0] = math.Min(min[0], v[0])
		min[1] = math.Min(min[1], v[1])
		max[0] = math.Max(max[0], v[0])
		max[1] = math.Max(max[1], v[1])
	}
	return Bounds{Min: min, Max: max}
}

// Contains reports whether p is strictly inside the loop, using the
// even-odd crossing rule. Points on the boundary are not reliably
// classified either way.
func (l Loop) Contains(p Vec2) bool {
	in := false
	n := len(l.V)
	for i := 0; i < n; i++ {
		a, b := l.V[i], l.V[(i+1)%n]
		if (a[1] > p[1]) != (b[1] > p[1]) {
			x := a[0] + (p[1]-a[1])/(b[1]-a[1])*(b[0]-a[0])
			if p[0] < x {
				in = !in
			}
		}
	}
	return in
}

// Dist returns the distance from p to the nearest point on the
// loop's boundary.
func (l Loop) Dist(p Vec2) float64 {
	d := math.Inf(1)
	n := len(l.V)
	for i := 0; i < n; i++ {
		d = math.Min(d, segDist(p, l.V[i], l.V[(i+1)%n]))
	}
	return d
}

// DistToLoops returns the distance from p to the nearest boundary
// point of any of the loops. It returns +Inf if loops is empty.
func DistToLoops(p Vec2, loops []Loop) float64 {
	d := math.Inf(1)
	for _, l := range loops {
		d = math.Min(d, l.Dist(p))
	}
	return d
}

// segIntersect reports whether the open segments a0-a1 and b0-b1
// properly intersect (crossing at interior points).
func segIntersect(a0, a1, b0, b1 Vec2) bool {
	d1 := b1.Sub(b0).Cross(a0.Sub(b0))
	d2 := b1.Sub(b0).Cross(a1.Sub(b0))
	d3 := a1.Sub(a0).Cross(b0.Sub(a0))
	d4 := a1.Sub(a0).Cross(b1.Sub(a0))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// SelfIntersects reports whether any two non-adjacent edges of the
// loop cross. This is the cheap O(n^2) re-check the engine runs on
// caller-supplied loops; it does not attempt repair.
func (l Loop) SelfIntersects() bool {
	n := len(l.V)
	for i := 0; i < n; i++ {
		a0, a1 := l.V[i], l.V[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// skip edges sharing a vertex
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			if segIntersect(a0, a1, l.V[j], l.V[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// Validate checks the region invariants: the outer loop and every
// island must have at least 3 vertices, nonzero area and no
// self-intersections, and every island must lie inside the outer
// loop. Winding is not checked here; the offset engine normalizes it.
func (r Region) Validate() error {
	check := func(l Loop, name string) error {
		if len(l.V) < 3 {
			return &Error{Kind: InvalidInput, Detail: name + " loop has fewer than 3 vertices"}
		}
		if math.Abs(l.Area()) < 1e-9 {
			return &Error{Kind: InvalidInput, Detail: name + " loop has zero area"}
		}
		if l.SelfIntersects() {
			return &Error{Kind: InvalidInput, Detail: name + " loop is self-intersecting"}
		}
		return nil
	}
	if err := check(r.Outer, "outer"); err != nil {
		return err
	}
	for _, isl := range r.Islands {
		if err := check(isl, "island"); err != nil {
			return err
		}
		for _, v := range isl.V {
			if !r.Outer.Contains(v) {
				return &Error{Kind: InvalidInput, Detail: "island not contained in outer loop"}
			}
		}
	}
	return nil
}
