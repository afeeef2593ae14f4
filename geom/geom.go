// Package geom provides the 2d geometry primitives used by the
// pocketing engine: points, closed loops, regions with islands,
// and the distance and containment queries the path generator
// needs. All coordinates are millimeters.
package geom

import "math"

// Vec2 is a 2-dimensional vector.
type Vec2 [2]float64

// Bounds describes an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec2
}

// Add returns v+w.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{v[0] + w[0], v[1] + w[1]}
}

// Sub returns v-w.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{v[0] - w[0], v[1] - w[1]}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

// Dot returns the dot product of v and w.
func (v Vec2) Dot(w Vec2) float64 {
	return v[0]*w[0] + v[1]*w[1]
}

// Cross returns the z component of the cross product of v and w.
func (v Vec2) Cross(w Vec2) float64 {
	return v[0]*w[1] - v[1]*w[0]
}

// Norm returns the euclidean length of v.
func (v Vec2) Norm() float64 {
	return math.Hypot(v[0], v[1])
}

// Dist returns the distance between v and w.
func (v Vec2) Dist(w Vec2) float64 {
	return math.Hypot(v[0]-w[0], v[1]-w[1])
}

// Lerp returns the point a fraction s of the way from v to w.
func (v Vec2) Lerp(w Vec2, s float64) Vec2 {
	return Vec2{v[0]*(1-s) + w[0]*s, v[1]*(1-s) + w[1]*s}
}

// Unit returns v scaled to unit length, or the zero vector if v is
// shorter than eps.
func (v Vec2) Unit() Vec2 {
	n := v.Norm()
	if n < 1e-12 {
		return Vec2{}
	}
	return Vec2{v[0] / n, v[1] / n}
}

// Contains reports whether p is inside the bounds (inclusive).
func (b Bounds) Contains(p Vec2) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1]
}

// Expand grows the bounds by d on every side.
func (b Bounds) Expand(d float64) Bounds {
	return Bounds{
		Min: Vec2{b.Min[0] - d, b.Min[1] - d},
		Max: Vec2{b.Max[0] + d, b.Max[1] + d},
	}
}

// Union returns the smallest bounds containing both b and c.
func (b Bounds) Union(c Bounds) Bounds {
	return Bounds{
		Min: Vec2{math.Min(b.Min[0], c.Min[0]), math.Min(b.Min[1], c.Min[1])},
		Max: Vec2{math.Max(b.Max[0], c.Max[0]), math.Max(b.Max[1], c.Max[1])},
	}
}

// segDist returns the distance from p to the segment a-b.
func segDist(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}
