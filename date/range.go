package date

import "fmt"

// Range represents a range of days, boundaries included. A zero boundary is open.
type Range struct{ From, To Date }

// NewRange creates a new range. If both boundaries are set and 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// ParseRange parses the boundaries of a range, an empty string is an open boundary.
func ParseRange(from, to string) (Range, error) {
	var r Range
	var err error
	if from != "" {
		if r.From, err = Parse(from); err != nil {
			return Range{}, fmt.Errorf("invalid start of range: %w", err)
		}
	}
	if to != "" {
		if r.To, err = Parse(to); err != nil {
			return Range{}, fmt.Errorf("invalid end of range: %w", err)
		}
	}
	return NewRange(r.From, r.To), nil
}

// Contains return true if the day is included in the range.
// Undated days are only contained in the fully open range.
func (r Range) Contains(d Date) bool {
	if r.IsOpen() {
		return true
	}
	if d.IsZero() {
		return false
	}
	return (r.From.IsZero() || !d.Before(r.From)) && (r.To.IsZero() || !d.After(r.To))
}

// IsOpen reports whether the range has no boundary.
func (r Range) IsOpen() bool { return r.From.IsZero() && r.To.IsZero() }

func (r Range) String() string {
	switch {
	case r.IsOpen():
		return "all time"
	case r.From.IsZero():
		return "until " + r.To.String()
	case r.To.IsZero():
		return "since " + r.From.String()
	default:
		return fmt.Sprintf("%s to %s", r.From, r.To)
	}
}
