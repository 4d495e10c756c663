// Package streak tracks consecutive-activity-day counters per user.
//
// The transition deliberately encodes calendar-relative semantics: it fires
// at write time with the entry's own date and is not a pure fold over the
// ledger, so state is persisted explicitly and never rebuilt from history.
// Edits and deletes of historical entries leave streak state untouched.
package streak

import (
	"time"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/clock"
)

// State captures one user's streak position.
type State struct {
	Current        int
	Longest        int
	LastActiveDate *time.Time
}

// Advance applies one logged-activity transition for the entry date d.
// Dates are compared at day granularity, midnight-normalized:
//   - same day as the last active date: no change
//   - exactly the next day: the streak extends by one
//   - any other gap, or first-ever activity: the streak restarts at one
//
// Longest is raised after every transition.
func Advance(s State, d time.Time) State {
	day := clock.Midnight(d)

	switch {
	case s.LastActiveDate == nil:
		s.Current = 1
	case clock.SameDay(*s.LastActiveDate, day):
		// Second activity on the same day does not double-increment.
	case clock.SameDay(s.LastActiveDate.AddDate(0, 0, 1), day):
		s.Current++
	default:
		s.Current = 1
	}

	s.LastActiveDate = &day
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return s
}

// Effective reports the streak a reader should see at time now: a stored
// streak decays to zero once a full calendar day passes with no activity.
// The decay depends on the wall clock, which is why it is applied on read
// and never written back over the stored state.
func Effective(s State, now time.Time) int {
	if s.LastActiveDate == nil {
		return 0
	}
	today := clock.Midnight(now)
	last := clock.Midnight(*s.LastActiveDate)
	if last.Before(today.AddDate(0, 0, -1)) {
		return 0
	}
	return s.Current
}
