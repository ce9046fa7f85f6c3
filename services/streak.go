package services

import (
	"sort"
	"time"
)

// StreakMilestones are the streak values that award a streak badge.
var StreakMilestones = map[int]bool{1: true, 3: true, 5: true}

const dateLayout = "2006-01-02"

// DateOf collapses a timestamp to its calendar date string.
func DateOf(t time.Time) string {
	return t.Format(dateLayout)
}

// ConsecutiveDayStreak computes the consecutive-day streak over the given
// play-dates (YYYY-MM-DD strings, duplicates allowed).
//
// The anchor behaviour deliberately matches the reference implementation: when
// the most recent play-date is not today the count starts at 0, but the
// pairwise walk over historical dates still increments from that baseline
// without checking that the first gap is anchored to yesterday. A profile
// that last played several days ago can therefore still report a non-zero
// streak. Pinned by TestConsecutiveDayStreakStaleAnchor; do not change without
// product sign-off.
func ConsecutiveDayStreak(playDates []string, today string) int {
	if len(playDates) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(playDates))
	dates := make([]string, 0, len(playDates))
	for _, d := range playDates {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	streak := 1
	if dates[0] != today {
		streak = 0
	}

	for i := 0; i < len(dates)-1; i++ {
		current, err := time.Parse(dateLayout, dates[i])
		if err != nil {
			break
		}
		next, err := time.Parse(dateLayout, dates[i+1])
		if err != nil {
			break
		}

		if int(current.Sub(next).Hours()/24) == 1 {
			streak++
		} else {
			break
		}
	}

	return streak
}
