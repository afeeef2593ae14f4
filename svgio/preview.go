package svgio

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/paulhankin/pocket"
	"github.com/paulhankin/pocket/geom"
)

// WriteSVG writes an SVG preview of the toolpath: cuts as black
// strokes (arcs kept as true arcs), rapids dashed.
func WriteSVG(w io.Writer, moves []pocket.Move) error {
	var werr error
	bi := bufio.NewWriter(w)
	wr := func(f string, args ...interface{}) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bi, f, args...)
	}

	b := moveBounds(moves)
	wr(`<svg width="%.2f" height="%.2f" viewBox="%.2f %.2f %.2f %.2f" version="1.1" xmlns="http://www.w3.org/2000/svg">`,
		b.Max[0]-b.Min[0], b.Max[1]-b.Min[1],
		b.Min[0], b.Min[1], b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	wr("\n")

	writeKind := func(style string, cut bool) {
		wr("<g fill=\"none\" %s>\n", style)
		for _, m := range moves {
			if m.IsCut() != cut || m.Start == m.End {
				continue
			}
			switch m.Kind {
			case pocket.ArcCW, pocket.ArcCCW:
				large := 0
				if arcSweepOver(m, math.Pi) {
					large = 1
				}
				// svg y runs downward, so math-ccw arcs render with
				// sweep flag 0
				sweep := 1
				if m.Kind == pocket.ArcCCW {
					sweep = 0
				}
				wr(`<path d="M %.2f %.2f A %.2f %.2f 0 %d %d %.2f %.2f"/>`,
					m.Start[0], m.Start[1], m.Radius, m.Radius, large, sweep, m.End[0], m.End[1])
				wr("\n")
			default:
				wr(`<path d="M %.2f %.2f L %.2f %.2f"/>`, m.Start[0], m.Start[1], m.End[0], m.End[1])
				wr("\n")
			}
		}
		wr("</g>\n")
	}
	writeKind(`stroke="black" stroke-width="0.1"`, true)
	writeKind(`stroke="red" stroke-width="0.1" stroke-dasharray="1,1"`, false)

	wr("</svg>")
	if werr == nil {
		werr = bi.Flush()
	}
	return werr
}

func arcSweepOver(m pocket.Move, limit float64) bool {
	a0 := math.Atan2(m.Start[1]-m.Center[1], m.Start[0]-m.Center[0])
	a1 := math.Atan2(m.End[1]-m.Center[1], m.End[0]-m.Center[0])
	var d float64
	if m.Kind == pocket.ArcCCW {
		d = a1 - a0
	} else {
		d = a0 - a1
	}
	for d <= 1e-9 {
		d += 2 * math.Pi
	}
	for d > 2*math.Pi {
		d -= 2 * math.Pi
	}
	return d > limit
}

func moveBounds(moves []pocket.Move) geom.Bounds {
	if len(moves) == 0 {
		return geom.Bounds{}
	}
	inf := math.Inf(1)
	b := geom.Bounds{Min: geom.Vec2{inf, inf}, Max: geom.Vec2{-inf, -inf}}
	add := func(v geom.Vec2) {
		b.Min[0] = math.Min(b.Min[0], v[0])
		b.Min[1] = math.Min(b.Min[1], v[1])
		b.Max[0] = math.Max(b.Max[0], v[0])
		b.Max[1] = math.Max(b.Max[1], v[1])
	}
	for _, m := range moves {
		add(m.Start)
		add(m.End)
		if m.Kind == pocket.ArcCW || m.Kind == pocket.ArcCCW {
			add(geom.Vec2{m.Center[0] - m.Radius, m.Center[1] - m.Radius})
			add(geom.Vec2{m.Center[0] + m.Radius, m.Center[1] + m.Radius})
		}
	}
	return b
}
