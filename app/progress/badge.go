package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BadgeType enumerates every badge a student can earn. The string value is
// what gets stored.
type BadgeType string

const (
	BadgeStreakMaster     BadgeType = "streak_master"
	BadgeCenturyCoder     BadgeType = "century_coder"
	BadgeComebackCoder    BadgeType = "comeback_coder"
	BadgeWeeklyTopper     BadgeType = "weekly_topper"
	BadgeConsistencyChamp BadgeType = "consistency_champ"
)

// BadgeTypes lists every badge in evaluation order.
func BadgeTypes() []BadgeType {
	return []BadgeType{
		BadgeStreakMaster,
		BadgeCenturyCoder,
		BadgeComebackCoder,
		BadgeWeeklyTopper,
		BadgeConsistencyChamp,
	}
}

// ParseBadgeType validates a stored badge type.
func ParseBadgeType(s string) (BadgeType, error) {
	for _, t := range BadgeTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown badge type %q", s)
}

// BadgeInfo is the display metadata of a badge.
type BadgeInfo struct {
	Type        BadgeType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// Info returns the metadata of b.
func (b BadgeType) Info() BadgeInfo {
	switch b {
	case BadgeStreakMaster:
		return BadgeInfo{b, "Streak Master", "7-day streak of 5+ daily problems", "fire"}
	case BadgeCenturyCoder:
		return BadgeInfo{b, "Century Coder", "100+ total problems solved", "code"}
	case BadgeComebackCoder:
		return BadgeInfo{b, "Comeback Coder", "Big week-over-week improvement", "chart-line"}
	case BadgeWeeklyTopper:
		return BadgeInfo{b, "Weekly Topper", "Top performer this week", "trophy"}
	case BadgeConsistencyChamp:
		return BadgeInfo{b, "Consistency Champ", "Completed 30-day challenge", "calendar-check"}
	}
	return BadgeInfo{Type: b}
}

// BadgeRules are the thresholds the rules evaluate against.
type BadgeRules struct {
	StreakDays          int
	StreakMinDaily      int
	CenturyTotal        int
	ComebackGrowth      float64
	ComebackMinIncrease int
	TopperRanks         int
	ChallengeDays       int
}

// DefaultBadgeRules returns the stock rule thresholds.
func DefaultBadgeRules() BadgeRules {
	return BadgeRules{
		StreakDays:          7,
		StreakMinDaily:      5,
		CenturyTotal:        100,
		ComebackGrowth:      0.5,
		ComebackMinIncrease: 10,
		TopperRanks:         1,
		ChallengeDays:       30,
	}
}

// History is everything known about one student that the rules look at.
type History struct {
	StudentID   uuid.UUID
	TotalSolved int
	Deltas      Deltas
	Days        []Day
	// WeeklyRank is the student's rank on the period leaderboard, 0 if absent.
	WeeklyRank int
}

// Award is one earned badge.
type Award struct {
	StudentID uuid.UUID `json:"studentId"`
	Type      BadgeType `json:"badgeType"`
	EarnedAt  time.Time `json:"earnedAt"`
}

// Evaluation is the outcome of evaluating one student.
type Evaluation struct {
	New []Award `json:"new"`
	All []Award `json:"all"`
}

// Qualifies reports whether h satisfies the rule for badge t.
func (r BadgeRules) Qualifies(t BadgeType, h History) bool {
	switch t {
	case BadgeStreakMaster:
		return LongestRun(h.Days, r.StreakMinDaily) >= r.StreakDays
	case BadgeCenturyCoder:
		return h.TotalSolved >= r.CenturyTotal
	case BadgeComebackCoder:
		return r.comeback(h.Deltas.All())
	case BadgeWeeklyTopper:
		return h.WeeklyRank > 0 && h.WeeklyRank <= r.TopperRanks
	case BadgeConsistencyChamp:
		return LongestRun(h.Days, 1) >= r.ChallengeDays
	}
	return false
}

// comeback looks for a period whose increment grew by more than
// ComebackGrowth over the previous one. After a flat or negative period any
// increment of at least ComebackMinIncrease counts.
func (r BadgeRules) comeback(increments []int) bool {
	for i := 1; i < len(increments); i++ {
		prev, cur := increments[i-1], increments[i]
		if prev <= 0 {
			if cur >= r.ComebackMinIncrease {
				return true
			}
			continue
		}
		if float64(cur-prev)/float64(prev) > r.ComebackGrowth {
			return true
		}
	}
	return false
}

// Evaluate runs every rule against h. Badges already in earned are kept as
// they are and never re-awarded; only newly qualifying types are added.
func (r BadgeRules) Evaluate(h History, earned []Award, now time.Time) Evaluation {
	have := make(map[BadgeType]bool, len(earned))
	ev := Evaluation{All: make([]Award, 0, len(earned)+len(BadgeTypes()))}
	for _, a := range earned {
		if have[a.Type] {
			continue
		}
		have[a.Type] = true
		ev.All = append(ev.All, a)
	}

	for _, t := range BadgeTypes() {
		if have[t] || !r.Qualifies(t, h) {
			continue
		}
		a := Award{StudentID: h.StudentID, Type: t, EarnedAt: now}
		have[t] = true
		ev.New = append(ev.New, a)
		ev.All = append(ev.All, a)
	}
	return ev
}
