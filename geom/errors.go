package geom

// ErrorKind classifies geometry failures.
type ErrorKind int

const (
	// InvalidInput means a caller-supplied loop was self-intersecting
	// or had zero area. The caller must fix the upstream geometry.
	InvalidInput ErrorKind = iota
	// Degenerate means an offset pass collapsed below the minimum
	// feature size. On the innermost pass this is the expected
	// terminal condition; on pass 1 it is an error.
	Degenerate
	// NonMonotonic means a deeper offset pass failed to shrink in
	// area. The offsetter produced inconsistent output; no pass of
	// the result can be trusted.
	NonMonotonic
)

// Error is a structured geometry error. Pass is the offset pass
// index for Degenerate errors, and -1 otherwise.
type Error struct {
	Kind   ErrorKind
	Pass   int
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidInput:
		return "invalid input geometry: " + e.Detail
	case Degenerate:
		return "degenerate offset: " + e.Detail
	case NonMonotonic:
		return "non-monotonic offset: " + e.Detail
	}
	return "geometry error: " + e.Detail
}
