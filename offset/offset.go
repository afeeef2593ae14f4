// Package offset computes inward polygon offsets of a pocket region.
// It wraps the clipper library, which works in scaled integer
// coordinates, so that nearly-coincident points cannot produce
// inconsistent winding or missed intersections the way ad hoc
// floating-point epsilon tests can.
package offset

import (
	"fmt"
	"math"

	clipper "github.com/ctessum/go.clipper"
	"github.com/paulhankin/pocket/geom"
)

// scale converts millimeters to the integer grid used internally.
// One unit is a micron, which is far below any machining tolerance.
const scale = 1000.0

// Join selects the corner join style for offset loops.
type Join int

const (
	JoinRound Join = iota
	JoinMiter
)

// Options configures the offset engine.
type Options struct {
	Join          Join
	JoinTolerance float64 // max deviation of a round join from the true arc, mm
	MinFeature    float64 // loops with area below this collapse, mm^2
}

func (o Options) withDefaults() Options {
	if o.JoinTolerance <= 0 {
		o.JoinTolerance = 0.01
	}
	if o.MinFeature <= 0 {
		o.MinFeature = 0.001
	}
	return o
}

// A Level holds the loops produced by one inward offset pass.
// Positive-area loops bound material to cut; negative-area loops are
// grown islands inside them.
type Level struct {
	Depth float64 // inward distance from the region boundary, mm
	Loops []geom.Loop
}

// A Family is an ordered sequence of offset levels, outermost first.
type Family struct {
	Levels []Level
}

// Area returns the net area enclosed by the level's loops.
func (lv Level) Area() float64 {
	a := 0.0
	for _, l := range lv.Loops {
		a += l.Area()
	}
	return a
}

func toClipper(l geom.Loop) clipper.Path {
	p := make(clipper.Path, len(l.V))
	for i, v := range l.V {
		p[i] = &clipper.IntPoint{
			X: clipper.CInt(math.Round(v[0] * scale)),
			Y: clipper.CInt(math.Round(v[1] * scale)),
		}
	}
	return p
}

func fromClipper(p clipper.Path) geom.Loop {
	l := geom.Loop{V: make([]geom.Vec2, len(p))}
	for i, ip := range p {
		l.V[i] = geom.Vec2{float64(ip.X) / scale, float64(ip.Y) / scale}
	}
	return l
}

// regionPaths returns the region as clipper paths with normalized
// winding: outer counter-clockwise, islands clockwise.
func regionPaths(r geom.Region) clipper.Paths {
	ps := clipper.NewPaths()
	outer := r.Outer
	if !outer.CCW() {
		outer = outer.Reversed()
	}
	ps = append(ps, toClipper(outer))
	for _, isl := range r.Islands {
		if isl.CCW() {
			isl = isl.Reversed()
		}
		ps = append(ps, toClipper(isl))
	}
	return ps
}

// offsetPaths offsets the paths by delta millimeters (negative is
// inward) with the configured join, resolving any self-intersections
// the offset introduces.
func offsetPaths(ps clipper.Paths, delta float64, opts Options) clipper.Paths {
	co := clipper.NewClipperOffset()
	co.ArcTolerance = opts.JoinTolerance * scale
	jt := clipper.JtRound
	if opts.Join == JoinMiter {
		jt = clipper.JtMiter
	}
	co.AddPaths(ps, jt, clipper.EtClosedPolygon)
	return co.Execute(delta * scale)
}

// keepFeatures drops loops smaller than the minimum feature size.
func keepFeatures(ps clipper.Paths, minFeature float64) clipper.Paths {
	out := clipper.NewPaths()
	for _, p := range ps {
		if math.Abs(clipper.Area(p))/(scale*scale) >= minFeature {
			out = append(out, p)
		}
	}
	return out
}

// Region offsets the region inward by each of the given distances in
// turn, producing one Level per distance. Each distance must be
// positive and the distances must be strictly increasing.
//
// If a level collapses (no loop survives the minimum feature size),
// the family built so far is returned together with a
// geom.Error{Kind: Degenerate} whose Pass field names the collapsed
// level. The caller decides whether that is the expected terminal
// pass or an error: a collapse on pass 0 means the tool does not fit
// the pocket at all.
func Region(r geom.Region, distances []float64, opts Options) (*Family, error) {
	opts = opts.withDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	last := 0.0
	for _, d := range distances {
		if d <= last {
			return nil, fmt.Errorf("offset distances must be positive and increasing, got %v", distances)
		}
		last = d
	}

	src := regionPaths(r)
	fam := &Family{}
	prevArea := math.Inf(1)
	for pass, d := range distances {
		sol := keepFeatures(offsetPaths(src, -d, opts), opts.MinFeature)
		if len(sol) == 0 {
			return fam, &geom.Error{
				Kind:   geom.Degenerate,
				Pass:   pass,
				Detail: fmt.Sprintf("offset pass %d at depth %.3fmm collapsed", pass, d),
			}
		}
		lv := Level{Depth: d}
		for _, p := range sol {
			lv.Loops = append(lv.Loops, fromClipper(p))
		}
		a := lv.Area()
		if err := monotonic(pass, a, prevArea); err != nil {
			return nil, err
		}
		prevArea = a
		fam.Levels = append(fam.Levels, lv)
	}
	return fam, nil
}

// monotonic guards the shrinking-area invariant between passes.
func monotonic(pass int, area, prev float64) error {
	if area < prev {
		return nil
	}
	return &geom.Error{
		Kind:   geom.NonMonotonic,
		Pass:   pass,
		Detail: fmt.Sprintf("offset pass %d area %.3f did not shrink (prev %.3f)", pass, area, prev),
	}
}

// ClearedArea returns the area the tool can actually clear: the
// region inset by margin+toolR and then grown back by toolR (a
// morphological opening). Square corners keep a small uncut residue
// because a round tool cannot reach into them.
func ClearedArea(r geom.Region, margin, toolR float64, opts Options) (float64, error) {
	opts = opts.withDefaults()
	in := offsetPaths(regionPaths(r), -(margin + toolR), opts)
	if len(in) == 0 {
		return 0, nil
	}
	out := offsetPaths(in, toolR, opts)
	a := 0.0
	for _, p := range out {
		a += clipper.Area(p)
	}
	return a / (scale * scale), nil
}
