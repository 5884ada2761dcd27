package progress

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Record is one student's classified current increment.
type Record struct {
	StudentID uuid.UUID
	Increment int
	Trend     Trend
}

// Summary is the cohort-level fold of classified records.
type Summary struct {
	Total         int     `json:"totalStudents"`
	Improved      int     `json:"improved"`
	Declined      int     `json:"declined"`
	Unchanged     int     `json:"same"`
	ImprovedPct   float64 `json:"improvedPercent"`
	DeclinedPct   float64 `json:"declinedPercent"`
	UnchangedPct  float64 `json:"samePercent"`
	MeanIncrement float64 `json:"averageImprovement"`
}

// Summarize folds records into counts, percentages and the mean increment.
// An empty cohort yields a zero Summary.
func Summarize(records []Record) Summary {
	var s Summary
	s.Total = len(records)
	if s.Total == 0 {
		return s
	}

	sum := 0
	for _, r := range records {
		sum += r.Increment
		switch r.Trend {
		case TrendImproved:
			s.Improved++
		case TrendDeclined:
			s.Declined++
		default:
			s.Unchanged++
		}
	}

	total := float64(s.Total)
	s.ImprovedPct = float64(s.Improved) / total * 100
	s.DeclinedPct = float64(s.Declined) / total * 100
	s.UnchangedPct = float64(s.Unchanged) / total * 100
	s.MeanIncrement = float64(sum) / total
	return s
}

// Rounded returns a copy with percentages and mean rounded to whole numbers
// for display.
func (s Summary) Rounded() Summary {
	s.ImprovedPct = math.Round(s.ImprovedPct)
	s.DeclinedPct = math.Round(s.DeclinedPct)
	s.UnchangedPct = math.Round(s.UnchangedPct)
	s.MeanIncrement = math.Round(s.MeanIncrement)
	return s
}

// Score is a leaderboard candidate.
type Score struct {
	StudentID uuid.UUID
	Value     int
}

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank      int       `json:"rank"`
	StudentID uuid.UUID `json:"studentId"`
	Score     int       `json:"score"`
}

// BuildLeaderboard ranks scores descending with 1-based positional ranks.
// Equal scores keep their input order. A student appearing more than once
// keeps their best score at the position of their first occurrence.
// topN <= 0 returns every entry.
func BuildLeaderboard(scores []Score, topN int) []Entry {
	best := make(map[uuid.UUID]int, len(scores))
	unique := make([]Score, 0, len(scores))
	for _, s := range scores {
		if i, seen := best[s.StudentID]; seen {
			if s.Value > unique[i].Value {
				unique[i].Value = s.Value
			}
			continue
		}
		best[s.StudentID] = len(unique)
		unique = append(unique, s)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Value > unique[j].Value
	})

	if topN > 0 && topN < len(unique) {
		unique = unique[:topN]
	}

	entries := make([]Entry, len(unique))
	for i, s := range unique {
		entries[i] = Entry{Rank: i + 1, StudentID: s.StudentID, Score: s.Value}
	}
	return entries
}

// RankOf returns the 1-based rank of a student in entries, or 0.
func RankOf(entries []Entry, studentID uuid.UUID) int {
	for _, e := range entries {
		if e.StudentID == studentID {
			return e.Rank
		}
	}
	return 0
}

// PeriodAverage is the class mean solved count at one period.
type PeriodAverage struct {
	Period  int     `json:"period"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// ClassAverageProgression averages the per-period values across students,
// counting only students that have a sample for that period.
func ClassAverageProgression(series []Deltas, periods int) []PeriodAverage {
	out := make([]PeriodAverage, periods)
	for p := 0; p < periods; p++ {
		out[p].Period = p + 1
		sum := 0
		for _, d := range series {
			if p < len(d.Present) && d.Present[p] {
				sum += d.Values[p]
				out[p].Samples++
			}
		}
		if out[p].Samples > 0 {
			out[p].Average = float64(sum) / float64(out[p].Samples)
		}
	}
	return out
}
