package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: end must be after start")

// DateRange is a half-open stay interval [Start, End): the guest occupies the
// nights from Start up to, but not including, End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New builds a range, normalising both bounds to UTC midnight.
func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: truncateToDay(start), End: truncateToDay(end)}
	if !dr.Start.Before(dr.End) {
		return DateRange{}, ErrInvalidRange
	}
	return dr, nil
}

// MustNew is a fixture helper that panics on an invalid range.
func MustNew(start, end time.Time) DateRange {
	dr, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return dr
}

// Nights returns the number of whole nights covered by the range.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Overlaps reports whether the two half-open ranges share at least one night.
// Back-to-back ranges (one's End equals the other's Start) do not conflict.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether the given day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := truncateToDay(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
