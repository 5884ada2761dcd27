package progress

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeltas(t *testing.T) {
	t.Run("Three weeks plus live", func(t *testing.T) {
		samples := []Sample{{1, 10}, {2, 15}, {3, 22}}
		d := ComputeDeltas(samples, 0, &Sample{TotalSolved: 30})

		assert.Equal(t, []int{10, 15, 22}, d.Values)
		assert.Equal(t, []int{5, 7}, d.Weekly)
		assert.Equal(t, 8, d.Current)
		assert.Equal(t, []int{5, 7, 8}, d.All())
		assert.Equal(t, TrendImproved, ClassifyTrend(d.Current))
	})

	t.Run("Missing period gives zero increments", func(t *testing.T) {
		samples := []Sample{{1, 10}, {3, 22}, {4, 30}}
		d := ComputeDeltas(samples, 4, nil)

		assert.Equal(t, []int{10, 0, 22, 30}, d.Values)
		assert.Equal(t, []int{0, 0, 8}, d.Weekly)
		assert.Equal(t, 0, d.Current)
	})

	t.Run("Single snapshot", func(t *testing.T) {
		d := ComputeDeltas([]Sample{{1, 42}}, 4, nil)
		assert.Equal(t, []int{0, 0, 0}, d.Weekly)
		assert.Equal(t, 0, d.Current)
		assert.False(t, d.HasLive)
	})

	t.Run("Live only", func(t *testing.T) {
		d := ComputeDeltas(nil, 0, &Sample{TotalSolved: 12})
		assert.Empty(t, d.Weekly)
		assert.Equal(t, 0, d.Current)
		assert.Equal(t, 12, d.Latest(&Sample{TotalSolved: 12}))
	})

	t.Run("Regression is not clamped", func(t *testing.T) {
		d := ComputeDeltas([]Sample{{1, 50}, {2, 40}}, 2, &Sample{TotalSolved: 35})
		assert.Equal(t, []int{-10}, d.Weekly)
		assert.Equal(t, -5, d.Current)
		assert.Equal(t, TrendDeclined, ClassifyTrend(d.Current))
	})

	t.Run("Live compares against last present week", func(t *testing.T) {
		d := ComputeDeltas([]Sample{{1, 10}, {2, 20}}, 4, &Sample{TotalSolved: 26})
		assert.Equal(t, 6, d.Current)
		assert.Equal(t, 20, d.Latest(nil))
	})

	t.Run("Current increment without live skips empty trailing weeks", func(t *testing.T) {
		d := ComputeDeltas([]Sample{{1, 10}, {2, 20}}, 4, nil)
		assert.Equal(t, []int{10, 20, 0, 0}, d.Values)
		assert.Equal(t, 10, d.CurrentIncrement())

		d = ComputeDeltas([]Sample{{1, 10}, {3, 22}}, 4, nil)
		assert.Equal(t, 0, d.CurrentIncrement())

		d = ComputeDeltas([]Sample{{1, 10}, {2, 15}}, 2, &Sample{TotalSolved: 19})
		assert.Equal(t, 4, d.CurrentIncrement())
	})
}

func TestImprovement(t *testing.T) {
	d := ComputeDeltas([]Sample{{1, 20}, {2, 25}}, 2, nil)
	diff, pct := Improvement(d, 30)
	assert.Equal(t, 10, diff)
	assert.InDelta(t, 50.0, pct, 1e-9)

	diff, pct = Improvement(ComputeDeltas(nil, 2, nil), 30)
	assert.Equal(t, 0, diff)
	assert.Zero(t, pct)
}

func TestClassifier(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		progress float64
		want     Tier
	}{
		{40, TierExcellent},
		{35, TierExcellent},
		{34.9, TierGood},
		{25, TierGood},
		{15, TierActive},
		{14, TierUnderperforming},
		{-3, TierUnderperforming},
		{math.NaN(), TierUnderperforming},
		{math.Inf(1), TierExcellent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Tier(tt.progress), "progress %v", tt.progress)
	}

	assert.Equal(t, Classification{Trend: TrendUnchanged, Tier: TierUnderperforming}, th.Classify(0))
	assert.Equal(t, Classification{Trend: TrendImproved, Tier: TierGood}, th.Classify(30))
}

func records(increments ...int) []Record {
	out := make([]Record, len(increments))
	for i, inc := range increments {
		out[i] = Record{StudentID: uuid.New(), Increment: inc, Trend: ClassifyTrend(inc)}
	}
	return out
}

func TestSummarize(t *testing.T) {
	t.Run("Four student cohort", func(t *testing.T) {
		s := Summarize(records(5, -2, 0, 10))
		assert.Equal(t, 4, s.Total)
		assert.Equal(t, 2, s.Improved)
		assert.Equal(t, 1, s.Declined)
		assert.Equal(t, 1, s.Unchanged)
		assert.Equal(t, 50.0, s.ImprovedPct)
		assert.Equal(t, 25.0, s.DeclinedPct)
		assert.Equal(t, 25.0, s.UnchangedPct)
		assert.Equal(t, 3.25, s.MeanIncrement)
		assert.Equal(t, 3.0, s.Rounded().MeanIncrement)
	})

	t.Run("Empty cohort", func(t *testing.T) {
		s := Summarize(nil)
		assert.Equal(t, Summary{}, s)
		assert.False(t, math.IsNaN(s.MeanIncrement))
	})

	t.Run("Percentages sum to 100", func(t *testing.T) {
		for _, cohort := range [][]int{{1}, {1, 2, -1}, {0, 0, 0, 3, -7, 9, 2}} {
			s := Summarize(records(cohort...))
			assert.InDelta(t, 100.0, s.ImprovedPct+s.DeclinedPct+s.UnchangedPct, 1e-9)
		}
	})
}

func TestBuildLeaderboard(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	t.Run("Top two keeps tie order", func(t *testing.T) {
		got := BuildLeaderboard([]Score{{a, 50}, {b, 70}, {c, 70}, {d, 10}}, 2)
		assert.Equal(t, []Entry{
			{Rank: 1, StudentID: b, Score: 70},
			{Rank: 2, StudentID: c, Score: 70},
		}, got)
	})

	t.Run("Stability across reversed input", func(t *testing.T) {
		got := BuildLeaderboard([]Score{{c, 70}, {b, 70}, {a, 70}}, 0)
		require.Len(t, got, 3)
		assert.Equal(t, []uuid.UUID{c, b, a}, []uuid.UUID{got[0].StudentID, got[1].StudentID, got[2].StudentID})
		assert.Equal(t, 3, got[2].Rank)
	})

	t.Run("One entry per student", func(t *testing.T) {
		got := BuildLeaderboard([]Score{{a, 5}, {b, 7}, {a, 9}}, 0)
		require.Len(t, got, 2)
		assert.Equal(t, Entry{Rank: 1, StudentID: a, Score: 9}, got[0])
		assert.Equal(t, 2, RankOf(got, b))
		assert.Equal(t, 0, RankOf(got, d))
	})

	t.Run("Empty input", func(t *testing.T) {
		got := BuildLeaderboard(nil, 5)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestClassAverageProgression(t *testing.T) {
	series := []Deltas{
		ComputeDeltas([]Sample{{1, 10}, {2, 20}}, 3, nil),
		ComputeDeltas([]Sample{{1, 30}}, 3, nil),
	}
	got := ClassAverageProgression(series, 3)
	assert.Equal(t, []PeriodAverage{
		{Period: 1, Average: 20, Samples: 2},
		{Period: 2, Average: 20, Samples: 1},
		{Period: 3, Average: 0, Samples: 0},
	}, got)
}

func days(start time.Time, counts ...int) []Day {
	out := make([]Day, len(counts))
	for i, c := range counts {
		out[i] = Day{Date: start.AddDate(0, 0, i), Count: c}
	}
	return out
}

func TestStreaks(t *testing.T) {
	start := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, LongestRun(days(start, 5, 6, 7, 1, 5), 5))
	assert.Equal(t, 5, LongestRun(days(start, 5, 6, 7, 1, 5), 1))
	assert.Equal(t, 0, LongestRun(nil, 1))

	gap := append(days(start, 1, 1), days(start.AddDate(0, 0, 3), 1, 1, 1)...)
	assert.Equal(t, 3, LongestRun(gap, 1))

	now := start.AddDate(0, 0, 4)
	assert.Equal(t, 5, CurrentStreak(days(start, 1, 1, 1, 1, 1), now))
	assert.Equal(t, 4, CurrentStreak(days(start, 1, 1, 1, 1), now))
	assert.Equal(t, 0, CurrentStreak(days(start, 1, 1), now))
}

func TestBadgeCatalog(t *testing.T) {
	for _, bt := range BadgeTypes() {
		info := bt.Info()
		assert.NotEmpty(t, info.Title, "badge %s has no title", bt)
		assert.NotEmpty(t, info.Description, "badge %s has no description", bt)

		parsed, err := ParseBadgeType(string(bt))
		require.NoError(t, err)
		assert.Equal(t, bt, parsed)
	}

	_, err := ParseBadgeType("speed_demon")
	assert.Error(t, err)
}

func TestEvaluateBadges(t *testing.T) {
	rules := DefaultBadgeRules()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	id := uuid.New()

	t.Run("Streak master awarded once", func(t *testing.T) {
		h := History{StudentID: id, Days: days(now.AddDate(0, 0, -7), 5, 5, 6, 8, 5, 5, 9)}

		first := rules.Evaluate(h, nil, now)
		require.Len(t, first.New, 1)
		assert.Equal(t, BadgeStreakMaster, first.New[0].Type)

		second := rules.Evaluate(h, first.All, now.Add(time.Hour))
		assert.Empty(t, second.New)
		assert.Equal(t, first.All, second.All)
	})

	t.Run("Six days is not enough", func(t *testing.T) {
		h := History{StudentID: id, Days: days(now, 5, 5, 5, 5, 5, 5, 4)}
		assert.False(t, rules.Qualifies(BadgeStreakMaster, h))
	})

	t.Run("Century and topper", func(t *testing.T) {
		h := History{StudentID: id, TotalSolved: 100, WeeklyRank: 1}
		ev := rules.Evaluate(h, nil, now)
		got := []BadgeType{}
		for _, a := range ev.New {
			got = append(got, a.Type)
		}
		assert.Equal(t, []BadgeType{BadgeCenturyCoder, BadgeWeeklyTopper}, got)
		assert.False(t, rules.Qualifies(BadgeWeeklyTopper, History{WeeklyRank: 2}))
		assert.False(t, rules.Qualifies(BadgeWeeklyTopper, History{}))
	})

	t.Run("Comeback growth", func(t *testing.T) {
		grow := History{Deltas: ComputeDeltas([]Sample{{1, 0}, {2, 10}, {3, 26}}, 3, nil)}
		assert.True(t, rules.Qualifies(BadgeComebackCoder, grow))

		steady := History{Deltas: ComputeDeltas([]Sample{{1, 0}, {2, 10}, {3, 24}}, 3, nil)}
		assert.False(t, rules.Qualifies(BadgeComebackCoder, steady))

		afterDip := History{Deltas: ComputeDeltas([]Sample{{1, 20}, {2, 18}}, 2, &Sample{TotalSolved: 30})}
		assert.True(t, rules.Qualifies(BadgeComebackCoder, afterDip))
	})

	t.Run("Consistency challenge", func(t *testing.T) {
		counts := make([]int, 30)
		for i := range counts {
			counts[i] = 1
		}
		assert.True(t, rules.Qualifies(BadgeConsistencyChamp, History{Days: days(now, counts...)}))
		assert.False(t, rules.Qualifies(BadgeConsistencyChamp, History{Days: days(now, counts[:29]...)}))
	})

	t.Run("Badges are monotonic", func(t *testing.T) {
		earned := []Award{{StudentID: id, Type: BadgeStreakMaster, EarnedAt: now.AddDate(0, -1, 0)}}
		ev := rules.Evaluate(History{StudentID: id}, earned, now)
		assert.Empty(t, ev.New)
		assert.Equal(t, earned, ev.All)

		grown := History{StudentID: id, TotalSolved: 150}
		later := rules.Evaluate(grown, ev.All, now)
		assert.Subset(t, later.All, ev.All)
		require.Len(t, later.New, 1)
		assert.Equal(t, BadgeCenturyCoder, later.New[0].Type)
	})
}
