// Package svgio loads pocket boundary loops from SVG files and
// writes SVG previews of toolpaths. It lives outside the engine:
// the engine itself performs no I/O and consumes validated loops.
package svgio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	rsvg "github.com/rustyoz/svg"
	"golang.org/x/net/html/charset"

	"github.com/paulhankin/pocket/geom"
)

// flattenTol is the chord error used when flattening SVG curves to
// polyline loops. The engine respaces loops to its own tolerance
// afterwards, so this only needs to be below machining noise.
const flattenTol = 0.01

// FromSVG parses an SVG file, extracting closed loops. Path elements
// (including bezier curves, which are flattened) are read through the
// drawing-instruction stream; polygon elements and group transforms
// are handled directly. Open strokes are not pocket boundaries and
// are ignored. This provides only limited SVG support and will fail
// or produce incorrect results on features it doesn't understand.
func FromSVG(r io.Reader) ([]geom.Loop, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var loops []geom.Loop

	pathLoops, err := loopsFromPaths(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	loops = append(loops, pathLoops...)

	polyLoops, err := loopsFromElements(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	loops = append(loops, polyLoops...)

	if len(loops) == 0 {
		return nil, fmt.Errorf("no closed loops found in svg")
	}
	return loops, nil
}

// Region assembles loops into a pocket region: the loop with the
// largest area is the outer boundary and every other loop must be an
// island inside it.
func Region(loops []geom.Loop) (geom.Region, error) {
	if len(loops) == 0 {
		return geom.Region{}, fmt.Errorf("no loops")
	}
	outer := 0
	best := 0.0
	for i, l := range loops {
		if a := math.Abs(l.Area()); a > best {
			outer = i
			best = a
		}
	}
	r := geom.Region{Outer: loops[outer]}
	for i, l := range loops {
		if i != outer {
			r.Islands = append(r.Islands, l)
		}
	}
	if err := r.Validate(); err != nil {
		return geom.Region{}, err
	}
	return r, nil
}

// loopsFromPaths extracts the geometry of every <path> element via
// the svg drawing-instruction stream, flattening curves.
func loopsFromPaths(r io.Reader) ([]geom.Loop, error) {
	doc, err := rsvg.ParseSvgFromReader(r, "", 1.0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg paths: %w", err)
	}
	di, derrs := doc.ParseDrawingInstructions()

	var loops []geom.Loop
	var cur []geom.Vec2
	flush := func(closed bool) {
		defer func() { cur = nil }()
		if len(cur) < 3 {
			return
		}
		if !closed && cur[0].Dist(cur[len(cur)-1]) > 1e-6 {
			return // open stroke, not a boundary
		}
		if cur[0].Dist(cur[len(cur)-1]) <= 1e-6 {
			cur = cur[:len(cur)-1]
		}
		if len(cur) >= 3 {
			loops = append(loops, geom.Loop{V: append([]geom.Vec2{}, cur...)})
		}
	}

	for di != nil || derrs != nil {
		select {
		case ins, ok := <-di:
			if !ok {
				di = nil
				continue
			}
			switch ins.Kind {
			case rsvg.MoveInstruction:
				flush(false)
				cur = append(cur, geom.Vec2{ins.M[0], ins.M[1]})
			case rsvg.LineInstruction:
				cur = append(cur, geom.Vec2{ins.M[0], ins.M[1]})
			case rsvg.CurveInstruction:
				if len(cur) == 0 || ins.CurvePoints == nil {
					continue
				}
				p0 := cur[len(cur)-1]
				c1 := geom.Vec2{ins.CurvePoints.C1[0], ins.CurvePoints.C1[1]}
				c2 := geom.Vec2{ins.CurvePoints.C2[0], ins.CurvePoints.C2[1]}
				p3 := geom.Vec2{ins.CurvePoints.T[0], ins.CurvePoints.T[1]}
				cur = append(cur, flattenCubic(p0, c1, c2, p3)...)
			case rsvg.CloseInstruction:
				flush(true)
			}
		case err, ok := <-derrs:
			if !ok {
				derrs = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to parse svg path data: %w", err)
			}
		}
	}
	flush(false)
	return loops, nil
}

// flattenCubic subdivides a cubic bezier into line segments whose
// deviation from the curve stays within flattenTol, returning the
// points after p0.
func flattenCubic(p0, p1, p2, p3 geom.Vec2) []geom.Vec2 {
	if cubicFlat(p0, p1, p2, p3) {
		return []geom.Vec2{p3}
	}
	m := func(a, b geom.Vec2) geom.Vec2 { return a.Lerp(b, 0.5) }
	p01, p12, p23 := m(p0, p1), m(p1, p2), m(p2, p3)
	p012, p123 := m(p01, p12), m(p12, p23)
	mid := m(p012, p123)
	return append(flattenCubic(p0, p01, p012, mid), flattenCubic(mid, p123, p23, p3)...)
}

func cubicFlat(p0, p1, p2, p3 geom.Vec2) bool {
	ax := 3*p1[0] - 2*p0[0] - p3[0]
	ay := 3*p1[1] - 2*p0[1] - p3[1]
	bx := 3*p2[0] - p0[0] - 2*p3[0]
	by := 3*p2[1] - p0[1] - 2*p3[1]
	mx := math.Max(ax*ax, bx*bx)
	my := math.Max(ay*ay, by*by)
	return (mx+my)/16 <= flattenTol*flattenTol
}

// loopsFromElements walks the svg element tree for polygon elements,
// applying group translate/scale transforms.
func loopsFromElements(r io.Reader) ([]geom.Loop, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	elt, err := svgparser.DecodeFirst(decoder)
	if err != nil {
		return nil, err
	}
	if err := elt.Decode(decoder); err != nil && err != io.EOF {
		return nil, err
	}
	var loops []geom.Loop
	err = walkElements(elt, identity(), &loops)
	return loops, err
}

func walkElements(e *svgparser.Element, xf xform, loops *[]geom.Loop) error {
	for _, c := range e.Children {
		switch c.Name {
		case "g":
			gxf, err := parseTransform(c.Attributes["transform"])
			if err != nil {
				return err
			}
			if err := walkElements(c, xf.compose(gxf), loops); err != nil {
				return err
			}
		case "polygon":
			pts, err := parsePointsList(c.Attributes["points"])
			if err != nil {
				return err
			}
			if len(pts) >= 3 {
				l := geom.Loop{V: make([]geom.Vec2, len(pts))}
				for i, p := range pts {
					l.V[i] = xf.apply(p)
				}
				*loops = append(*loops, l)
			}
		case "rect":
			l, err := parseRect(c.Attributes)
			if err != nil {
				return err
			}
			for i := range l.V {
				l.V[i] = xf.apply(l.V[i])
			}
			*loops = append(*loops, l)
		case "defs", "path", "line", "polyline", "text", "style":
			// paths are handled by the instruction stream; open
			// elements are not boundaries
		default:
		}
	}
	return nil
}

func parsePointsList(s string) ([]geom.Vec2, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", " ")
	fields := strings.Fields(s)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd number of coordinates in points list")
	}
	pts := make([]geom.Vec2, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, err
		}
		pts = append(pts, geom.Vec2{x, y})
	}
	return pts, nil
}

func parseRect(attrs map[string]string) (geom.Loop, error) {
	pf := func(k string) (float64, error) {
		v := attrs[k]
		if v == "" {
			return 0, nil
		}
		return strconv.ParseFloat(v, 64)
	}
	x, err := pf("x")
	if err != nil {
		return geom.Loop{}, err
	}
	y, err := pf("y")
	if err != nil {
		return geom.Loop{}, err
	}
	w, err := pf("width")
	if err != nil {
		return geom.Loop{}, err
	}
	h, err := pf("height")
	if err != nil {
		return geom.Loop{}, err
	}
	if w <= 0 || h <= 0 {
		return geom.Loop{}, fmt.Errorf("rect with nonpositive size %gx%g", w, h)
	}
	return geom.Loop{V: []geom.Vec2{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}}, nil
}

// xform is a 2d affine transform (translate/scale only, which is
// all the boundary files use).
type xform struct {
	sx, sy, tx, ty float64
}

func identity() xform {
	return xform{sx: 1, sy: 1}
}

func (x xform) compose(y xform) xform {
	return xform{
		sx: x.sx * y.sx,
		sy: x.sy * y.sy,
		tx: x.tx + x.sx*y.tx,
		ty: x.ty + x.sy*y.ty,
	}
}

func (x xform) apply(v geom.Vec2) geom.Vec2 {
	return geom.Vec2{x.sx*v[0] + x.tx, x.sy*v[1] + x.ty}
}

func parseTransform(s string) (xform, error) {
	xf := identity()
	s = strings.TrimSpace(s)
	if s == "" {
		return xf, nil
	}
	for _, part := range strings.Split(s, ")") {
		part = strings.TrimSpace(strings.Trim(part, " ,"))
		if part == "" {
			continue
		}
		open := strings.Index(part, "(")
		if open < 0 {
			return xf, fmt.Errorf("failed to parse transform %q", s)
		}
		name := strings.TrimSpace(part[:open])
		args := strings.Fields(strings.ReplaceAll(part[open+1:], ",", " "))
		fa := make([]float64, len(args))
		for i, a := range args {
			f, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return xf, err
			}
			fa[i] = f
		}
		switch name {
		case "translate":
			if len(fa) == 1 {
				fa = append(fa, 0)
			}
			if len(fa) != 2 {
				return xf, fmt.Errorf("translate should have one or two parameters, got %q", part)
			}
			xf = xf.compose(xform{sx: 1, sy: 1, tx: fa[0], ty: fa[1]})
		case "scale":
			if len(fa) == 1 {
				fa = append(fa, fa[0])
			}
			if len(fa) != 2 {
				return xf, fmt.Errorf("scale should have one or two parameters, got %q", part)
			}
			xf = xf.compose(xform{sx: fa[0], sy: fa[1]})
		default:
			return xf, fmt.Errorf("unknown transform function %q", name)
		}
	}
	return xf, nil
}
