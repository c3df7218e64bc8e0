package booking

import "time"

// Interval is a half-open time range [Start, End). A booking ending at 15:00
// does not conflict with one starting at 15:00.
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid reports whether the interval is well-formed (strictly positive
// length). Zero-length and inverted intervals are invalid.
func (iv Interval) IsValid() bool {
	return iv.Start.Before(iv.End)
}

// Overlaps reports whether two well-formed half-open intervals share at
// least one instant. It assumes both inputs passed IsValid; degenerate
// intervals are rejected upstream.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
