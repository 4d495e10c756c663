package clock

import "time"

// Clock abstracts wall-clock reads so day-relative logic is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }

// Midnight truncates t to local midnight of its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}
