package pocket

import (
	"math"

	"github.com/paulhankin/pocket/geom"
)

// junctionDeviation is the assumed blend radius tolerance at path
// corners, in mm. The machine rounds each corner within this
// deviation; the tighter the corner, the smaller the blend circle
// and the lower the speed the accel and jerk limits allow through it.
const junctionDeviation = 0.05

// FeedStats summarizes the feed annotation pass.
type FeedStats struct {
	TimeS     float64
	Histogram map[Bottleneck]int
}

// junctionRadius returns the radius of the blend circle inscribed at
// a corner between unit directions u and v within junctionDeviation.
// Straight-through junctions return +Inf, full reversals 0.
func junctionRadius(u, v [2]float64) float64 {
	dot := u[0]*v[0] + u[1]*v[1]
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	sinHalf := math.Sqrt(0.5 * (1 + dot))
	if sinHalf >= 1-1e-12 {
		return math.Inf(1)
	}
	return junctionDeviation * sinHalf / (1 - sinHalf)
}

// AnnotateFeed computes, for every move, the highest feed achievable
// under the commanded feed, the machine feed caps, the acceleration
// available over the segment length, and the jerk-limited cornering
// speed at the junctions. The minimum binds, and which constraint
// bound is recorded on the move. Feeds are annotated in place; the
// move geometry is never altered.
//
// A commanded feed the machine cannot reach is not an error: the
// feed is clamped to the achievable value and the move is flagged
// feed-cap, since a conservative clamp is always safe to execute.
func AnnotateFeed(moves []Move, commanded float64, lim KinematicLimits) FeedStats {
	stats := FeedStats{Histogram: map[Bottleneck]int{}}
	n := len(moves)
	if n == 0 {
		return stats
	}
	accel := lim.MaxAccel
	jerk := lim.MaxJerk
	cmd := commanded / 60 // mm/s

	// segment lengths including Z travel
	length := make([]float64, n)
	prevZ := moves[0].Z
	for i, m := range moves {
		length[i] = math.Hypot(m.Length(), m.Z-prevZ)
		prevZ = m.Z
	}

	// per-move feed cap in mm/s, with the constraint that set it
	capOf := func(m Move) (float64, Bottleneck) {
		var c float64
		kind := BottleneckFeedCap
		if m.Kind == Rapid {
			c = lim.RapidFeed / 60
		} else {
			c = math.Min(cmd, lim.MaxFeed/60)
		}
		switch m.Kind {
		case Linear:
			u := m.End.Sub(m.Start).Unit()
			for a := 0; a < 2; a++ {
				if lim.AxisMaxFeed[a] > 0 && math.Abs(u[a]) > 1e-9 {
					c = math.Min(c, lim.AxisMaxFeed[a]/60/math.Abs(u[a]))
				}
			}
		case ArcCW, ArcCCW:
			// an arc sweeps through axis-aligned directions, so both
			// caps apply directly
			for a := 0; a < 2; a++ {
				if lim.AxisMaxFeed[a] > 0 {
					c = math.Min(c, lim.AxisMaxFeed[a]/60)
				}
			}
			// centripetal limits on the arc itself
			if m.Radius > 0 {
				if va := math.Sqrt(accel * m.Radius); va < c {
					c, kind = va, BottleneckAccel
				}
				if vj := math.Cbrt(jerk * m.Radius * m.Radius); vj < c {
					c, kind = vj, BottleneckJerk
				}
			}
		}
		return c, kind
	}
	caps := make([]float64, n)
	capKind := make([]Bottleneck, n)
	for i, m := range moves {
		caps[i], capKind[i] = capOf(m)
	}

	// junction velocity limits: v[i] is the max speed entering move i
	v := make([]float64, n+1)
	jkind := make([]Bottleneck, n+1)
	v[0] = 0
	jkind[0] = BottleneckAccel
	for i := 1; i < n; i++ {
		prev, cur := moves[i-1], moves[i]
		if prev.Kind == Dwell || cur.Kind == Dwell ||
			length[i-1] < 1e-9 || length[i] < 1e-9 {
			v[i] = 0
			jkind[i] = BottleneckAccel
			continue
		}
		_, uOut := prev.dir()
		uIn, _ := cur.dir()
		if uOut == (geom.Vec2{}) || uIn == (geom.Vec2{}) {
			// Z-only neighbor: direction change undefined, stop
			v[i] = 0
			jkind[i] = BottleneckAccel
			continue
		}
		r := junctionRadius(uOut, uIn)
		if math.IsInf(r, 1) {
			v[i] = math.Inf(1)
			jkind[i] = BottleneckNone
			continue
		}
		va := math.Sqrt(accel * r)
		vj := math.Cbrt(jerk * r * r)
		if vj < va {
			v[i] = vj
			jkind[i] = BottleneckJerk
		} else {
			v[i] = va
			jkind[i] = BottleneckAccel
		}
	}
	v[n] = 0
	jkind[n] = BottleneckAccel

	// forward pass: acceleration-limited entry velocities
	for i := 0; i < n; i++ {
		reach := math.Sqrt(v[i]*v[i] + 2*accel*length[i])
		v[i+1] = math.Min(v[i+1], math.Min(reach, math.Min(caps[i], capClamp(caps, i+1))))
	}
	// backward pass: ensure every junction is decelerable into
	for i := n - 1; i >= 0; i-- {
		reach := math.Sqrt(v[i+1]*v[i+1] + 2*accel*length[i])
		if v[i] > reach {
			v[i] = reach
		}
	}

	for i := range moves {
		m := &moves[i]
		if m.Kind == Dwell {
			m.Feed = 0
			m.Limit = BottleneckNone
			stats.TimeS += m.DwellS
			stats.Histogram[BottleneckNone]++
			continue
		}
		l := length[i]
		if l < 1e-9 {
			m.Feed = caps[i] * 60
			m.Limit = BottleneckNone
			stats.Histogram[BottleneckNone]++
			continue
		}
		vin, vout := v[i], v[i+1]
		peak := math.Sqrt((2*accel*l + vin*vin + vout*vout) / 2)
		feed := math.Min(caps[i], peak)
		m.Feed = feed * 60

		target := cmd
		if m.Kind == Rapid {
			target = lim.RapidFeed / 60
		}
		switch {
		case feed >= target-1e-9:
			m.Limit = BottleneckNone
		case caps[i] < target-1e-9 && feed >= caps[i]-1e-9:
			m.Limit = capKind[i]
		default:
			// profile-limited: attribute to the slower junction, or
			// to acceleration when the segment is simply too short
			bind := i
			if vout < vin {
				bind = i + 1
			}
			if jkind[bind] == BottleneckNone || v[bind] >= feed-1e-9 {
				m.Limit = BottleneckAccel
			} else {
				m.Limit = jkind[bind]
			}
		}
		stats.Histogram[m.Limit]++
		stats.TimeS += trapezoidTime(l, vin, vout, feed, accel)
	}
	return stats
}

func capClamp(caps []float64, i int) float64 {
	if i >= len(caps) {
		return 0
	}
	return caps[i]
}

// trapezoidTime returns the time to travel l mm entering at vin,
// leaving at vout, cruising at most at vmax, with acceleration a.
func trapezoidTime(l, vin, vout, vmax, a float64) float64 {
	if l <= 0 {
		return 0
	}
	if vmax < vin {
		vmax = vin
	}
	if vmax < vout {
		vmax = vout
	}
	dAcc := (vmax*vmax - vin*vin) / (2 * a)
	dDec := (vmax*vmax - vout*vout) / (2 * a)
	if dAcc+dDec > l {
		// triangular profile: never reaches vmax
		peak := math.Sqrt((2*a*l + vin*vin + vout*vout) / 2)
		return (peak-vin)/a + (peak-vout)/a
	}
	t := (vmax-vin)/a + (vmax-vout)/a
	if vmax > 0 {
		t += (l - dAcc - dDec) / vmax
	}
	return t
}
