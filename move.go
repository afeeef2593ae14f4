// Package pocket turns a 2d boundary region and machining parameters
// into an ordered, kinematically-bounded toolpath. The pipeline is a
// sequence of pure functions: offset family, strategy linking,
// trochoidal relief, arc fitting, feed annotation, statistics. No
// stage mutates shared state and no stage performs I/O, so
// independent invocations are safe to run in parallel.
package pocket

import (
	"math"

	"github.com/paulhankin/pocket/geom"
)

// MoveKind is the kind of a single tool motion.
type MoveKind int

const (
	Rapid MoveKind = iota
	Linear
	ArcCW
	ArcCCW
	Dwell
)

func (k MoveKind) String() string {
	switch k {
	case Rapid:
		return "rapid"
	case Linear:
		return "linear"
	case ArcCW:
		return "arc_cw"
	case ArcCCW:
		return "arc_ccw"
	case Dwell:
		return "dwell"
	}
	return "unknown"
}

// Bottleneck records which kinematic constraint limited a move's
// feed. BottleneckNone means the move runs at the commanded feed.
type Bottleneck int

const (
	BottleneckNone Bottleneck = iota
	BottleneckFeedCap
	BottleneckAccel
	BottleneckJerk
)

func (b Bottleneck) String() string {
	switch b {
	case BottleneckNone:
		return "none"
	case BottleneckFeedCap:
		return "feed-cap"
	case BottleneckAccel:
		return "accel"
	case BottleneckJerk:
		return "jerk"
	}
	return "unknown"
}

// A Move is a single tool motion. Center and Radius are set only for
// arc kinds. Z is the tool height at the end of the move; rapids
// travel at the safe height and plunges are linear moves that change
// only Z. Feed and Bottleneck are annotated by the feed estimator;
// the earlier stages leave them zero.
type Move struct {
	Kind   MoveKind   `json:"kind"`
	Start  geom.Vec2  `json:"start"`
	End    geom.Vec2  `json:"end"`
	Center geom.Vec2  `json:"center,omitempty"`
	Radius float64    `json:"radius,omitempty"`
	Z      float64    `json:"z"`
	DwellS float64    `json:"dwell_s,omitempty"`
	Feed   float64    `json:"feed_mm_min,omitempty"`
	Limit  Bottleneck `json:"bottleneck,omitempty"`

	// Engagement is the radial depth of cut along this move, in mm.
	// It is carried from the path generator for the trochoidal
	// inserter and for debugging; rapids and dwells have zero.
	Engagement float64 `json:"-"`
}

// sweep returns the arc's swept angle in radians, in (0, 2pi]. A
// move whose start and end coincide is a full circle.
func (m Move) sweep() float64 {
	a0 := math.Atan2(m.Start[1]-m.Center[1], m.Start[0]-m.Center[0])
	a1 := math.Atan2(m.End[1]-m.Center[1], m.End[0]-m.Center[0])
	var d float64
	if m.Kind == ArcCCW {
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

// Length returns the XY length of the move in mm. Dwells have zero
// length and plunges report their Z travel.
func (m Move) Length() float64 {
	switch m.Kind {
	case Dwell:
		return 0
	case ArcCW, ArcCCW:
		return m.Radius * m.sweep()
	}
	d := m.Start.Dist(m.End)
	return d
}

// IsCut reports whether the move removes material.
func (m Move) IsCut() bool {
	return m.Kind == Linear || m.Kind == ArcCW || m.Kind == ArcCCW
}

// dir returns the unit direction of travel at the start and end of
// the move. For arcs these are the tangents.
func (m Move) dir() (in, out geom.Vec2) {
	switch m.Kind {
	case ArcCW, ArcCCW:
		rs := m.Start.Sub(m.Center)
		re := m.End.Sub(m.Center)
		if m.Kind == ArcCCW {
			return geom.Vec2{-rs[1], rs[0]}.Unit(), geom.Vec2{-re[1], re[0]}.Unit()
		}
		return geom.Vec2{rs[1], -rs[0]}.Unit(), geom.Vec2{re[1], -re[0]}.Unit()
	case Dwell:
		return geom.Vec2{}, geom.Vec2{}
	}
	u := m.End.Sub(m.Start).Unit()
	return u, u
}
