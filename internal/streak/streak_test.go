package streak

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2026, time.March, n, 15, 30, 0, 0, time.UTC)
}

func TestAdvanceFirstActivityStartsAtOne(t *testing.T) {
	s := Advance(State{}, day(1))
	if s.Current != 1 || s.Longest != 1 {
		t.Fatalf("expected streak 1/1, got %d/%d", s.Current, s.Longest)
	}
	if s.LastActiveDate == nil || !s.LastActiveDate.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected last active date normalized to midnight, got %v", s.LastActiveDate)
	}
}

func TestAdvanceConsecutiveDayIncrements(t *testing.T) {
	s := Advance(State{}, day(1))
	s = Advance(s, day(2))
	if s.Current != 2 {
		t.Fatalf("expected streak 2 after day N then N+1, got %d", s.Current)
	}
}

func TestAdvanceSameDayUnchanged(t *testing.T) {
	s := Advance(State{}, day(1))
	s = Advance(s, day(1).Add(4*time.Hour))
	if s.Current != 1 {
		t.Fatalf("expected streak unchanged on same-day activity, got %d", s.Current)
	}
}

func TestAdvanceGapResetsToOne(t *testing.T) {
	s := Advance(State{}, day(1))
	s = Advance(s, day(2))
	s = Advance(s, day(5))
	if s.Current != 1 {
		t.Fatalf("expected streak reset to 1 after multi-day gap, got %d", s.Current)
	}
	if s.Longest != 2 {
		t.Fatalf("expected longest streak preserved at 2, got %d", s.Longest)
	}
}

func TestAdvanceLongestTracksMaximum(t *testing.T) {
	var s State
	for n := 1; n <= 4; n++ {
		s = Advance(s, day(n))
	}
	s = Advance(s, day(10))
	s = Advance(s, day(11))
	if s.Longest != 4 {
		t.Fatalf("expected longest 4, got %d", s.Longest)
	}
	if s.Current != 2 {
		t.Fatalf("expected current 2, got %d", s.Current)
	}
}

func TestEffectiveDecaysAfterMissedDay(t *testing.T) {
	s := Advance(State{}, day(1))
	s = Advance(s, day(2))

	if got := Effective(s, day(2)); got != 2 {
		t.Fatalf("expected effective 2 on the active day, got %d", got)
	}
	if got := Effective(s, day(3)); got != 2 {
		t.Fatalf("expected effective 2 the day after (still recoverable), got %d", got)
	}
	if got := Effective(s, day(4)); got != 0 {
		t.Fatalf("expected effective 0 after a full missed day, got %d", got)
	}
}

func TestEffectiveZeroWithoutHistory(t *testing.T) {
	if got := Effective(State{}, day(1)); got != 0 {
		t.Fatalf("expected 0 for empty state, got %d", got)
	}
}
