package geom

import (
	"math"
	"testing"
)

// square returns a CCW square loop with corner (x, y) and side s.
func square(x, y, s float64) Loop {
	return Loop{V: []Vec2{{x, y}, {x + s, y}, {x + s, y + s}, {x, y + s}}}
}

func TestLoopArea(t *testing.T) {
	tests := []struct {
		name string
		l    Loop
		want float64
	}{
		{"unit square", square(0, 0, 1), 1},
		{"10mm square", square(-5, -5, 10), 100},
		{"clockwise square", square(0, 0, 2).Reversed(), -4},
		{"triangle", Loop{V: []Vec2{{0, 0}, {4, 0}, {0, 3}}}, 6},
	}
	for _, test := range tests {
		if got := test.l.Area(); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("%s: Area() = %v, want %v", test.name, got, test.want)
		}
		wantCCW := test.want > 0
		if got := test.l.CCW(); got != wantCCW {
			t.Errorf("%s: CCW() = %v, want %v", test.name, got, wantCCW)
		}
	}
}

func TestLoopReversedInvolution(t *testing.T) {
	l := square(1, 2, 3)
	r := l.Reversed().Reversed()
	if len(r.V) != len(l.V) {
		t.Fatalf("got %d vertices, want %d", len(r.V), len(l.V))
	}
	for i := range l.V {
		if r.V[i] != l.V[i] {
			t.Errorf("vertex %d = %v, want %v", i, r.V[i], l.V[i])
		}
	}
}

func TestLoopContains(t *testing.T) {
	l := square(0, 0, 10)
	tests := []struct {
		p    Vec2
		want bool
	}{
		{Vec2{5, 5}, true},
		{Vec2{0.01, 0.01}, true},
		{Vec2{9.99, 9.99}, true},
		{Vec2{-1, 5}, false},
		{Vec2{11, 5}, false},
		{Vec2{5, -0.01}, false},
		{Vec2{5, 10.01}, false},
	}
	for _, test := range tests {
		if got := l.Contains(test.p); got != test.want {
			t.Errorf("Contains(%v) = %v, want %v", test.p, got, test.want)
		}
	}
}

func TestLoopDist(t *testing.T) {
	l := square(0, 0, 10)
	tests := []struct {
		p    Vec2
		want float64
	}{
		{Vec2{5, 5}, 5},    // center
		{Vec2{5, 1}, 1},    // near bottom edge
		{Vec2{-3, 5}, 3},   // outside left
		{Vec2{13, 14}, 5},  // outside corner, 3-4-5
		{Vec2{10, 10}, 0},  // on a vertex
	}
	for _, test := range tests {
		if got := l.Dist(test.p); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("Dist(%v) = %v, want %v", test.p, got, test.want)
		}
	}
	if got := DistToLoops(Vec2{5, 1}, []Loop{l, square(100, 100, 1)}); math.Abs(got-1) > 1e-9 {
		t.Errorf("DistToLoops = %v, want 1", got)
	}
	if got := DistToLoops(Vec2{0, 0}, nil); !math.IsInf(got, 1) {
		t.Errorf("DistToLoops with no loops = %v, want +Inf", got)
	}
}

func TestSelfIntersects(t *testing.T) {
	tests := []struct {
		name string
		l    Loop
		want bool
	}{
		{"square", square(0, 0, 10), false},
		{"triangle", Loop{V: []Vec2{{0, 0}, {4, 0}, {0, 3}}}, false},
		{"bowtie", Loop{V: []Vec2{{0, 0}, {10, 10}, {10, 0}, {0, 10}}}, true},
		{"collinear run", Loop{V: []Vec2{{0, 0}, {5, 0}, {10, 0}, {10, 10}, {0, 10}}}, false},
	}
	for _, test := range tests {
		if got := test.l.SelfIntersects(); got != test.want {
			t.Errorf("%s: SelfIntersects() = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestRegionValidate(t *testing.T) {
	ok := Region{Outer: square(0, 0, 100), Islands: []Loop{square(40, 40, 20)}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid region rejected: %v", err)
	}

	tests := []struct {
		name string
		r    Region
	}{
		{"two vertices", Region{Outer: Loop{V: []Vec2{{0, 0}, {1, 1}}}}},
		{"zero area", Region{Outer: Loop{V: []Vec2{{0, 0}, {5, 0}, {10, 0}}}}},
		{"self-intersecting outer", Region{Outer: Loop{V: []Vec2{{0, 0}, {10, 10}, {10, 0}, {0, 10}}}}},
		{"island outside", Region{Outer: square(0, 0, 10), Islands: []Loop{square(20, 20, 5)}}},
		{"bad island", Region{Outer: square(0, 0, 100), Islands: []Loop{{V: []Vec2{{1, 1}, {2, 2}}}}}},
	}
	for _, test := range tests {
		err := test.r.Validate()
		if err == nil {
			t.Errorf("%s: Validate() = nil, want error", test.name)
			continue
		}
		gerr, ok := err.(*Error)
		if !ok {
			t.Errorf("%s: error type %T, want *Error", test.name, err)
			continue
		}
		if gerr.Kind != InvalidInput {
			t.Errorf("%s: kind = %v, want InvalidInput", test.name, gerr.Kind)
		}
	}
}
