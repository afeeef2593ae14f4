package pocket

import "fmt"

// Strategy selects how the offset family is linked into a toolpath.
// It is a closed set: code switching on a Strategy must handle every
// value and reject anything else.
type Strategy int

const (
	// Spiral links adjacent offset loops at their nearest points into
	// one continuous inward path, minimizing rapids and re-entries.
	Spiral Strategy = iota
	// Lanes keeps each offset loop discrete, ordered outer to inner,
	// with an explicit rapid between loops.
	Lanes
)

func (s Strategy) String() string {
	switch s {
	case Spiral:
		return "spiral"
	case Lanes:
		return "lanes"
	}
	return "unknown"
}

// ParameterError reports an out-of-range machining parameter. It is
// returned before any geometry work begins.
type ParameterError struct {
	Field  string
	Detail string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %s: %s", e.Field, e.Detail)
}

// KinematicLimits bounds the feed the machine can actually achieve.
// AxisMaxFeed optionally caps feed per axis; zero entries are
// unlimited.
type KinematicLimits struct {
	MaxFeed     float64    // mm/min
	RapidFeed   float64    // mm/min; 0 means MaxFeed
	MaxAccel    float64    // mm/s^2
	MaxJerk     float64    // mm/s^3
	AxisMaxFeed [2]float64 // mm/min per axis, optional
}

// Params are the machining parameters for one pocketing run.
type Params struct {
	ToolDiameter float64  // mm, > 0
	Stepover     float64  // fraction of tool diameter, (0, 1]
	Margin       float64  // mm clearance kept from the boundary, >= 0
	Stepdown     float64  // mm depth per pass, used for the volume estimate
	Strategy     Strategy // Spiral or Lanes
	SmoothingTol float64  // mm chord-to-arc deviation for respacing
	ChordError   float64  // mm tolerance for arc fitting; 0 uses SmoothingTol
	Feed         float64  // commanded cutting feed, mm/min
	Limits       KinematicLimits

	// TrochoidThresholdPct is the radial engagement, as a percent of
	// tool diameter, above which trochoidal relief is inserted.
	// Values <= 0 or >= 100 disable trochoids.
	TrochoidThresholdPct float64

	SafeZ       float64 // retract height for rapids, mm
	CutZ        float64 // cutting height, mm (typically negative)
	EntryDwellS float64 // dwell after each plunge, seconds
	MaxPasses   int     // offset pass limit; 0 uses a default
}

func (p Params) withDefaults() Params {
	if p.SmoothingTol == 0 {
		p.SmoothingTol = 0.02
	}
	if p.ChordError == 0 {
		p.ChordError = p.SmoothingTol
	}
	if p.MaxPasses == 0 {
		p.MaxPasses = 256
	}
	if p.SafeZ == 0 {
		p.SafeZ = 5
	}
	if p.CutZ == 0 {
		p.CutZ = -1
	}
	if p.Stepdown == 0 {
		p.Stepdown = -p.CutZ
	}
	if p.Limits.MaxFeed == 0 {
		p.Limits.MaxFeed = p.Feed
	}
	if p.Limits.RapidFeed == 0 {
		p.Limits.RapidFeed = p.Limits.MaxFeed
	}
	if p.Limits.MaxAccel == 0 {
		p.Limits.MaxAccel = 500
	}
	if p.Limits.MaxJerk == 0 {
		p.Limits.MaxJerk = 1e5
	}
	return p
}

// Validate rejects out-of-range parameters. It is called on the
// defaulted parameter set before any geometry work.
func (p Params) Validate() error {
	bad := func(field, detail string) error {
		return &ParameterError{Field: field, Detail: detail}
	}
	if p.ToolDiameter <= 0 {
		return bad("ToolDiameter", fmt.Sprintf("must be > 0, got %g", p.ToolDiameter))
	}
	if p.Stepover <= 0 || p.Stepover > 1 {
		return bad("Stepover", fmt.Sprintf("must be in (0, 1], got %g", p.Stepover))
	}
	if p.Margin < 0 {
		return bad("Margin", fmt.Sprintf("must be >= 0, got %g", p.Margin))
	}
	if p.Stepdown < 0 {
		return bad("Stepdown", fmt.Sprintf("must be >= 0, got %g", p.Stepdown))
	}
	if p.Feed <= 0 {
		return bad("Feed", fmt.Sprintf("must be > 0, got %g", p.Feed))
	}
	if p.SmoothingTol <= 0 {
		return bad("SmoothingTol", fmt.Sprintf("must be > 0, got %g", p.SmoothingTol))
	}
	if p.ChordError <= 0 {
		return bad("ChordError", fmt.Sprintf("must be > 0, got %g", p.ChordError))
	}
	if p.TrochoidThresholdPct < 0 || p.TrochoidThresholdPct > 100 {
		return bad("TrochoidThresholdPct", fmt.Sprintf("must be in [0, 100], got %g", p.TrochoidThresholdPct))
	}
	if p.Limits.MaxFeed <= 0 {
		return bad("Limits.MaxFeed", fmt.Sprintf("must be > 0, got %g", p.Limits.MaxFeed))
	}
	if p.Limits.MaxAccel <= 0 {
		return bad("Limits.MaxAccel", fmt.Sprintf("must be > 0, got %g", p.Limits.MaxAccel))
	}
	if p.Limits.MaxJerk <= 0 {
		return bad("Limits.MaxJerk", fmt.Sprintf("must be > 0, got %g", p.Limits.MaxJerk))
	}
	if p.SafeZ <= p.CutZ {
		return bad("SafeZ", fmt.Sprintf("must be above CutZ, got SafeZ=%g CutZ=%g", p.SafeZ, p.CutZ))
	}
	if p.EntryDwellS < 0 {
		return bad("EntryDwellS", fmt.Sprintf("must be >= 0, got %g", p.EntryDwellS))
	}
	switch p.Strategy {
	case Spiral, Lanes:
	default:
		return bad("Strategy", fmt.Sprintf("unknown strategy %d", p.Strategy))
	}
	return nil
}

// step returns the stepover distance in mm.
func (p Params) step() float64 {
	return p.Stepover * p.ToolDiameter
}
