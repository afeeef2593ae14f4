// Package gcode converts a toolpath move list to machine-dialect
// G-code. The dialect is described by a Config value passed in by
// the caller; the emitter is a pure formatting stage and identical
// (moves, config) inputs always produce byte-identical output.
package gcode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/paulhankin/pocket"
)

// ArcMode selects how arcs are written.
type ArcMode int

const (
	// ArcIJ writes the arc center as an offset from the start point.
	ArcIJ ArcMode = iota
	// ArcR writes the arc radius, negative for sweeps over 180
	// degrees per the usual convention.
	ArcR
)

// DwellSyntax selects the dwell word's unit.
type DwellSyntax int

const (
	// DwellSeconds writes G4 S<seconds>.
	DwellSeconds DwellSyntax = iota
	// DwellMilliseconds writes G4 P<milliseconds>.
	DwellMilliseconds
)

// Config describes a machine dialect. Header and Footer lines may
// contain {TOKEN} placeholders substituted from Tokens.
type Config struct {
	Header []string
	Footer []string
	Arc    ArcMode
	Dwell  DwellSyntax
	Tokens map[string]string

	// Decimals is the number of decimal places for coordinates.
	// Zero means 3.
	Decimals int
}

// A Writer emits G-code for a move stream.
type Writer struct {
	b    *bufio.Writer
	cfg  Config
	err  error
	dec  int
	feed float64 // last emitted feed, mm/min
	zSet bool
	z    float64
}

// NewWriter returns a Writer emitting to w in the given dialect.
func NewWriter(w io.Writer, cfg *Config) *Writer {
	dec := cfg.Decimals
	if dec == 0 {
		dec = 3
	}
	return &Writer{b: bufio.NewWriter(w), cfg: *cfg, dec: dec, feed: -1}
}

func (w *Writer) line(f string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.b, f+"\n", args...)
}

// substitute replaces {TOKEN} placeholders. Tokens are applied in
// sorted key order so output is deterministic regardless of map
// iteration order.
func (w *Writer) substitute(s string) string {
	keys := make([]string, 0, len(w.cfg.Tokens))
	for k := range w.cfg.Tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s = strings.ReplaceAll(s, "{"+k+"}", w.cfg.Tokens[k])
	}
	return s
}

// num formats a coordinate with the configured precision, avoiding
// the negative-zero form so output is stable.
func (w *Writer) num(v float64) string {
	s := fmt.Sprintf("%.*f", w.dec, v)
	if s == fmt.Sprintf("-%.*f", w.dec, 0.0) {
		s = s[1:]
	}
	return s
}

// Preamble writes the dialect header.
func (w *Writer) Preamble() {
	for _, h := range w.cfg.Header {
		w.line("%s", w.substitute(h))
	}
}

// Postamble writes the dialect footer.
func (w *Writer) Postamble() {
	for _, f := range w.cfg.Footer {
		w.line("%s", w.substitute(f))
	}
}

// feedWord returns the F word when the move's feed differs from the
// last emitted one, else the empty string.
func (w *Writer) feedWord(m pocket.Move) string {
	if m.Feed <= 0 || m.Feed == w.feed {
		return ""
	}
	w.feed = m.Feed
	return fmt.Sprintf(" F%.1f", m.Feed)
}

// zWord returns the Z word when the move changes tool height.
func (w *Writer) zWord(m pocket.Move) string {
	if w.zSet && m.Z == w.z {
		return ""
	}
	w.zSet = true
	w.z = m.Z
	return " Z" + w.num(m.Z)
}

// Move writes one toolpath move.
func (w *Writer) Move(m pocket.Move) {
	switch m.Kind {
	case pocket.Rapid:
		w.line("G0 X%s Y%s%s", w.num(m.End[0]), w.num(m.End[1]), w.zWord(m))
	case pocket.Linear:
		w.line("G1 X%s Y%s%s%s", w.num(m.End[0]), w.num(m.End[1]), w.zWord(m), w.feedWord(m))
	case pocket.ArcCW, pocket.ArcCCW:
		g := "G2"
		if m.Kind == pocket.ArcCCW {
			g = "G3"
		}
		switch w.cfg.Arc {
		case ArcR:
			r := m.Radius
			if arcSweep(m) > math.Pi {
				r = -r
			}
			w.line("%s X%s Y%s R%s%s%s", g, w.num(m.End[0]), w.num(m.End[1]),
				w.num(r), w.zWord(m), w.feedWord(m))
		default:
			w.line("%s X%s Y%s I%s J%s%s%s", g, w.num(m.End[0]), w.num(m.End[1]),
				w.num(m.Center[0]-m.Start[0]), w.num(m.Center[1]-m.Start[1]),
				w.zWord(m), w.feedWord(m))
		}
	case pocket.Dwell:
		switch w.cfg.Dwell {
		case DwellMilliseconds:
			w.line("G4 P%d", int(math.Round(m.DwellS*1000)))
		default:
			w.line("G4 S%s", w.num(m.DwellS))
		}
	}
}

// Flush writes any buffered output and reports the first error
// encountered.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.b.Flush()
}

// arcSweep returns the swept angle of an arc move in (0, 2pi].
func arcSweep(m pocket.Move) float64 {
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
	return d
}

// Emit renders the whole move list as a single G-code string,
// header and footer included.
func Emit(moves []pocket.Move, cfg *Config) string {
	var sb strings.Builder
	w := NewWriter(&sb, cfg)
	w.Preamble()
	for _, m := range moves {
		w.Move(m)
	}
	w.Postamble()
	w.Flush() // strings.Builder cannot fail
	return sb.String()
}
