package progress

import (
	"sort"
	"time"
)

// Day is one calendar day of activity.
type Day struct {
	Date  time.Time
	Count int
}

// dayKey truncates to a UTC calendar day.
func dayKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalizeDays merges days by UTC date and sorts them ascending.
func normalizeDays(days []Day) []Day {
	merged := make(map[time.Time]int, len(days))
	for _, d := range days {
		merged[dayKey(d.Date)] += d.Count
	}
	out := make([]Day, 0, len(merged))
	for date, count := range merged {
		out = append(out, Day{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// LongestRun returns the longest run of consecutive days whose count is at
// least minCount.
func LongestRun(days []Day, minCount int) int {
	days = normalizeDays(days)
	longest, run := 0, 0
	var prev time.Time
	for _, d := range days {
		if d.Count < minCount {
			run = 0
			continue
		}
		if run > 0 && d.Date.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		prev = d.Date
		if run > longest {
			longest = run
		}
	}
	return longest
}

// CurrentStreak counts consecutive active days ending today or yesterday.
func CurrentStreak(days []Day, now time.Time) int {
	active := make(map[time.Time]bool, len(days))
	for _, d := range normalizeDays(days) {
		if d.Count > 0 {
			active[d.Date] = true
		}
	}

	day := dayKey(now)
	if !active[day] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for active[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
