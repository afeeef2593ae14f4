package geom

import (
	"math"
	"testing"
)

func TestVec2Ops(t *testing.T) {
	a := Vec2{3, 4}
	b := Vec2{1, -2}
	if got := a.Add(b); got != (Vec2{4, 2}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Vec2{2, 6}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != (Vec2{6, 8}) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Dot(b); got != -5 {
		t.Errorf("Dot = %v", got)
	}
	if got := a.Cross(b); got != -10 {
		t.Errorf("Cross = %v", got)
	}
	if got := a.Norm(); got != 5 {
		t.Errorf("Norm = %v", got)
	}
	if got := a.Dist(Vec2{0, 0}); got != 5 {
		t.Errorf("Dist = %v", got)
	}
	if got := a.Lerp(b, 0.5); got != (Vec2{2, 1}) {
		t.Errorf("Lerp = %v", got)
	}
	if got := a.Unit(); math.Abs(got.Norm()-1) > 1e-12 {
		t.Errorf("Unit norm = %v", got.Norm())
	}
	if got := (Vec2{}).Unit(); got != (Vec2{}) {
		t.Errorf("Unit of zero = %v, want zero", got)
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{Min: Vec2{0, 0}, Max: Vec2{10, 5}}
	if !b.Contains(Vec2{5, 2}) || !b.Contains(Vec2{0, 0}) || !b.Contains(Vec2{10, 5}) {
		t.Error("Contains rejected interior or boundary point")
	}
	if b.Contains(Vec2{11, 2}) || b.Contains(Vec2{5, -1}) {
		t.Error("Contains accepted exterior point")
	}
	e := b.Expand(1)
	if e.Min != (Vec2{-1, -1}) || e.Max != (Vec2{11, 6}) {
		t.Errorf("Expand = %+v", e)
	}
	u := b.Union(Bounds{Min: Vec2{-5, 2}, Max: Vec2{3, 20}})
	if u.Min != (Vec2{-5, 0}) || u.Max != (Vec2{10, 20}) {
		t.Errorf("Union = %+v", u)
	}
}

func TestSegDist(t *testing.T) {
	tests := []struct {
		p, a, b Vec2
		want    float64
	}{
		{Vec2{5, 3}, Vec2{0, 0}, Vec2{10, 0}, 3},   // above interior
		{Vec2{-4, 3}, Vec2{0, 0}, Vec2{10, 0}, 5},  // before start
		{Vec2{13, 4}, Vec2{0, 0}, Vec2{10, 0}, 5},  // past end
		{Vec2{1, 1}, Vec2{2, 2}, Vec2{2, 2}, math.Sqrt2}, // degenerate segment
	}
	for _, test := range tests {
		if got := segDist(test.p, test.a, test.b); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("segDist(%v, %v, %v) = %v, want %v", test.p, test.a, test.b, got, test.want)
		}
	}
}
