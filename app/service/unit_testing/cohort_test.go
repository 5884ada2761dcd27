package service_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "student-progress-dashboard/app/models/postgresql"
	"student-progress-dashboard/app/progress"
	service "student-progress-dashboard/app/service/postgresql"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func buildOpts(weeks, last int) service.BuildOptions {
	return service.BuildOptions{Thresholds: progress.DefaultThresholds(), Weeks: weeks, LastPeriod: last, Now: now}
}

func TestBuildProgress(t *testing.T) {
	t.Run("Success: weekly values and live increment", func(t *testing.T) {
		st := newStudent("Alice", "alice", "2027")
		snaps := []models.Snapshot{snap(st.ID, 1, 10), snap(st.ID, 2, 15), snap(st.ID, 3, 22), snap(st.ID, 0, 30)}

		p := service.BuildProgress(st, snaps, nil, nil, buildOpts(3, 3))

		assert.Equal(t, []int{10, 15, 22}, p.WeeklyValues)
		assert.Equal(t, []int{5, 7}, p.Deltas)
		assert.Equal(t, []int{5, 7, 8}, p.History.All())
		assert.Equal(t, 8, p.CurrentIncrement)
		assert.Equal(t, 8, p.WeeklyProgress)
		assert.Equal(t, progress.TrendImproved, p.Trend)
		assert.Equal(t, progress.TierUnderperforming, p.Status)
		assert.True(t, p.Active)
		assert.Equal(t, 30, p.Stats.TotalSolved)
		assert.Equal(t, 20, p.Improvement)
		assert.InDelta(t, 200.0, p.ImprovementPercent, 1e-9)
	})

	t.Run("Success: window keeps the newest weeks", func(t *testing.T) {
		st := newStudent("Alice", "alice", "2027")
		snaps := []models.Snapshot{snap(st.ID, 1, 10), snap(st.ID, 2, 15), snap(st.ID, 3, 22), snap(st.ID, 0, 30)}

		p := service.BuildProgress(st, snaps, nil, nil, buildOpts(2, 3))

		assert.Equal(t, []int{15, 22}, p.WeeklyValues)
		assert.Equal(t, []int{7}, p.Deltas)
		assert.Equal(t, 8, p.CurrentIncrement)
	})

	t.Run("Edge: missing week contributes zero increments", func(t *testing.T) {
		st := newStudent("Bob", "bob", "2027")
		snaps := []models.Snapshot{snap(st.ID, 1, 10), snap(st.ID, 3, 20)}

		p := service.BuildProgress(st, snaps, nil, nil, buildOpts(3, 3))

		assert.Equal(t, []int{10, 0, 20}, p.WeeklyValues)
		assert.Equal(t, []int{0, 0}, p.Deltas)
		assert.Equal(t, 0, p.CurrentIncrement)
		assert.Equal(t, 20, p.Stats.TotalSolved)
		assert.Equal(t, progress.TrendUnchanged, p.Trend)
	})

	t.Run("Edge: fewer closed weeks than the window and no live snapshot", func(t *testing.T) {
		st := newStudent("Frank", "frank", "2027")
		snaps := []models.Snapshot{snap(st.ID, 1, 10), snap(st.ID, 2, 20)}

		p := service.BuildProgress(st, snaps, nil, nil, buildOpts(4, 2))

		assert.Equal(t, []int{10, 20, 0, 0}, p.WeeklyValues)
		assert.Equal(t, 10, p.CurrentIncrement)
		assert.Equal(t, progress.TrendImproved, p.Trend)
		assert.True(t, p.Active)
	})

	t.Run("Edge: student with no data", func(t *testing.T) {
		st := newStudent("Carol", "carol", "2028")

		p := service.BuildProgress(st, nil, nil, nil, buildOpts(4, 0))

		assert.Equal(t, st.ID, p.Stats.StudentID)
		assert.Equal(t, 0, p.CurrentIncrement)
		assert.Equal(t, progress.TierUnderperforming, p.Status)
		assert.False(t, p.Active)
		assert.NotNil(t, p.Badges)
	})

	t.Run("Success: streaks from daily activity", func(t *testing.T) {
		st := newStudent("Dan", "dan", "2028")
		day := func(offset, count int) models.DailyActivity {
			return models.DailyActivity{StudentID: st.ID, Day: now.AddDate(0, 0, offset), Count: count}
		}
		days := []models.DailyActivity{day(-5, 1), day(-4, 2), day(-3, 3), day(-2, 0), day(-1, 4), day(0, 1)}

		p := service.BuildProgress(st, nil, days, nil, buildOpts(4, 0))

		assert.Equal(t, 2, p.Streak)
		assert.Equal(t, 3, p.MaxStreak)
		assert.Equal(t, 5, p.TotalActiveDays)
	})

	t.Run("Success: tier follows the current increment", func(t *testing.T) {
		st := newStudent("Eve", "eve", "2027")
		snaps := []models.Snapshot{snap(st.ID, 1, 100), snap(st.ID, 0, 140)}

		p := service.BuildProgress(st, snaps, nil, nil, buildOpts(1, 1))

		assert.Equal(t, 40, p.CurrentIncrement)
		assert.Equal(t, progress.TierExcellent, p.Status)
	})
}

func cohortOf(increments ...int) []service.StudentProgress {
	out := make([]service.StudentProgress, len(increments))
	for i, inc := range increments {
		st := newStudent(string(rune('A'+i)), string(rune('a'+i)), "2027")
		snaps := []models.Snapshot{snap(st.ID, 1, 100), snap(st.ID, 0, 100+inc)}
		out[i] = service.BuildProgress(st, snaps, nil, nil, buildOpts(1, 1))
	}
	return out
}

func TestRankCohort(t *testing.T) {
	cohort := cohortOf(3, 9, 9, -1)

	weekly := service.RankCohort(cohort, service.ByWeekly, 2)
	require.Len(t, weekly, 2)
	assert.Equal(t, cohort[1].Student.ID, weekly[0].Student.Student.ID)
	assert.Equal(t, cohort[2].Student.ID, weekly[1].Student.Student.ID)
	assert.Equal(t, 1, weekly[0].Rank)
	assert.Equal(t, 2, weekly[1].Rank)

	total := service.RankCohort(cohort, service.ByTotal, 0)
	require.Len(t, total, 4)
	assert.Equal(t, 109, total[0].Score)
	assert.Equal(t, 99, total[3].Score)

	assert.Empty(t, service.RankCohort(nil, service.ByWeekly, 5))
}

func TestSummarizeCohort(t *testing.T) {
	s := service.Summarize(cohortOf(5, -2, 0, 10))

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Improved)
	assert.Equal(t, 1, s.Declined)
	assert.Equal(t, 1, s.Unchanged)
	assert.InDelta(t, 50.0, s.ImprovedPct, 1e-9)
	assert.InDelta(t, 3.25, s.MeanIncrement, 1e-9)
}

func TestBuildAnalytics(t *testing.T) {
	cohort := cohortOf(40, 26, 16, 2)

	a := service.BuildAnalytics(cohort, 1)

	assert.Equal(t, 4, a.Totals.TotalStudents)
	assert.Equal(t, 4, a.Totals.ActiveStudents)
	assert.Equal(t, 1, a.Totals.Underperforming)
	require.Len(t, a.TopImprovers, 4)
	assert.Equal(t, 40, a.TopImprovers[0].Improvement)
	require.Len(t, a.Categories, 4)
	for _, c := range a.Categories {
		assert.Equal(t, 1, c.Count, c.Tier)
	}
	require.Len(t, a.ClassAverage, 1)
	assert.InDelta(t, 100.0, a.ClassAverage[0].Average, 1e-9)
	assert.Equal(t, 4, a.ClassAverage[0].Samples)
}

func TestWriteProgressCSV(t *testing.T) {
	st := newStudent("Alice, Jr.", "alice", "2027")
	snaps := []models.Snapshot{snap(st.ID, 1, 10), snap(st.ID, 0, 18)}
	cohort := []service.StudentProgress{service.BuildProgress(st, snaps, nil, nil, buildOpts(2, 1))}

	out, err := service.WriteProgressCSV(cohort, 2)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "week1", rows[0][8])
	assert.Equal(t, "week2", rows[0][9])
	assert.Equal(t, "Alice, Jr.", rows[1][0])
	assert.Equal(t, "10", rows[1][8])
	assert.Equal(t, "", rows[1][9])
	assert.Equal(t, "8", rows[1][10])
}

func TestBuildBadgesPage(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	mk := func(id uuid.UUID, bt progress.BadgeType) models.BadgeWithStudent {
		return models.BadgeWithStudent{Badge: models.Badge{ID: uuid.New(), StudentID: id, BadgeType: string(bt), EarnedAt: now}}
	}
	page := service.BuildBadgesPage([]models.BadgeWithStudent{
		mk(alice, progress.BadgeCenturyCoder),
		mk(bob, progress.BadgeCenturyCoder),
		mk(alice, progress.BadgeStreakMaster),
	})

	assert.Equal(t, 3, page.Stats.TotalBadges)
	assert.Equal(t, 2, page.Stats.Recipients)
	require.NotNil(t, page.Stats.MostPopular)
	assert.Equal(t, progress.BadgeCenturyCoder, page.Stats.MostPopular.Type)
	assert.Len(t, page.ByType, len(progress.BadgeTypes()))
	assert.Equal(t, "Century Coder", page.Badges[0].Title)

	empty := service.BuildBadgesPage(nil)
	assert.NotNil(t, empty.Badges)
	assert.Nil(t, empty.Stats.MostPopular)
}
