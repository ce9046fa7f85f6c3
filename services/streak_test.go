package services

import (
	"testing"
	"time"
)

func dayOffset(days int) string {
	return DateOf(time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC).AddDate(0, 0, days))
}

func TestConsecutiveDayStreakEmpty(t *testing.T) {
	if got := ConsecutiveDayStreak(nil, dayOffset(0)); got != 0 {
		t.Fatalf("streak of no dates = %d, want 0", got)
	}
}

func TestConsecutiveDayStreakToday(t *testing.T) {
	dates := []string{dayOffset(0)}
	if got := ConsecutiveDayStreak(dates, dayOffset(0)); got != 1 {
		t.Fatalf("streak = %d, want 1", got)
	}
}

func TestConsecutiveDayStreakThreeDays(t *testing.T) {
	dates := []string{dayOffset(0), dayOffset(-1), dayOffset(-2)}
	if got := ConsecutiveDayStreak(dates, dayOffset(0)); got != 3 {
		t.Fatalf("streak = %d, want 3", got)
	}
}

func TestConsecutiveDayStreakDuplicatesCollapse(t *testing.T) {
	dates := []string{dayOffset(0), dayOffset(0), dayOffset(-1), dayOffset(-1)}
	if got := ConsecutiveDayStreak(dates, dayOffset(0)); got != 2 {
		t.Fatalf("streak = %d, want 2", got)
	}
}

func TestConsecutiveDayStreakGapBreaks(t *testing.T) {
	dates := []string{dayOffset(0), dayOffset(-1), dayOffset(-3), dayOffset(-4)}
	if got := ConsecutiveDayStreak(dates, dayOffset(0)); got != 2 {
		t.Fatalf("streak = %d, want 2", got)
	}
}

func TestConsecutiveDayStreakSingleStaleDate(t *testing.T) {
	dates := []string{dayOffset(-5)}
	if got := ConsecutiveDayStreak(dates, dayOffset(0)); got != 0 {
		t.Fatalf("streak = %d, want 0", got)
	}
}

// Pins the reference anchor behaviour: the walk over historical gaps is not
// anchored to yesterday, so consecutive old dates still count from a 0 base.
func TestConsecutiveDayStreakStaleAnchor(t *testing.T) {
	dates := []string{dayOffset(-5), dayOffset(-6), dayOffset(-7)}
	if got := ConsecutiveDayStreak(dates, dayOffset(0)); got != 2 {
		t.Fatalf("streak = %d, want 2 (reference anchor behaviour)", got)
	}
}

func TestConsecutiveDayStreakUnsortedInput(t *testing.T) {
	dates := []string{dayOffset(-2), dayOffset(0), dayOffset(-1)}
	if got := ConsecutiveDayStreak(dates, dayOffset(0)); got != 3 {
		t.Fatalf("streak = %d, want 3", got)
	}
}
