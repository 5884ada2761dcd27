package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	models "student-progress-dashboard/app/models/postgresql"
	"student-progress-dashboard/app/progress"
	repoPg "student-progress-dashboard/app/repository/postgresql"
)

// StudentProgress is the derived record shown for one student on every
// dashboard.
type StudentProgress struct {
	Student            models.Student   `json:"student"`
	Stats              models.Snapshot  `json:"stats"`
	AcceptanceRate     float64          `json:"acceptanceRate"`
	WeeklyValues       []int            `json:"weeklyValues"`
	Deltas             []int            `json:"deltas"`
	CurrentIncrement   int              `json:"currentIncrement"`
	WeeklyProgress     int              `json:"weeklyProgress"`
	Trend              progress.Trend   `json:"trend"`
	Status             progress.Tier    `json:"status"`
	Active             bool             `json:"active"`
	Improvement        int              `json:"improvement"`
	ImprovementPercent float64          `json:"improvementPercent"`
	Streak             int              `json:"streak"`
	MaxStreak          int              `json:"maxStreak"`
	TotalActiveDays    int              `json:"totalActiveDays"`
	BadgeCount         int              `json:"badgeCount"`
	Badges             []models.Badge   `json:"-"`
	History            progress.Deltas  `json:"-"`
	Days               []progress.Day   `json:"-"`
	Live               *progress.Sample `json:"-"`
}

// CohortBuilder turns stored students into progress records. Weekly values
// cover the last `weeks` closed periods of the whole cohort.
type CohortBuilder struct {
	snapshots  repoPg.SnapshotRepository
	badges     repoPg.BadgeRepository
	thresholds progress.Thresholds
	weeks      int
	now        func() time.Time
}

func NewCohortBuilder(s repoPg.SnapshotRepository, b repoPg.BadgeRepository, t progress.Thresholds, weeks int) *CohortBuilder {
	return &CohortBuilder{snapshots: s, badges: b, thresholds: t, weeks: weeks, now: time.Now}
}

func (b *CohortBuilder) Thresholds() progress.Thresholds { return b.thresholds }

// Weeks is the number of tracked weekly periods.
func (b *CohortBuilder) Weeks() int { return b.weeks }

// Build loads snapshots, activity and badges for students in three batch
// queries and derives one record per student, in input order.
func (b *CohortBuilder) Build(ctx context.Context, students []models.Student) ([]StudentProgress, error) {
	ids := make([]uuid.UUID, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}

	snapshots, err := b.snapshots.GetSnapshotsByStudentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	activity, err := b.snapshots.GetDailyActivityByStudentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load daily activity: %w", err)
	}
	badges, err := b.badges.GetBadgesByStudentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}

	lastPeriod := 0
	snapsBy := make(map[uuid.UUID][]models.Snapshot, len(students))
	for _, s := range snapshots {
		snapsBy[s.StudentID] = append(snapsBy[s.StudentID], s)
		if s.Period > lastPeriod {
			lastPeriod = s.Period
		}
	}
	daysBy := make(map[uuid.UUID][]models.DailyActivity, len(students))
	for _, d := range activity {
		daysBy[d.StudentID] = append(daysBy[d.StudentID], d)
	}
	badgesBy := make(map[uuid.UUID][]models.Badge, len(students))
	for _, bd := range badges {
		badgesBy[bd.StudentID] = append(badgesBy[bd.StudentID], bd)
	}

	now := b.now()
	out := make([]StudentProgress, len(students))
	for i, s := range students {
		out[i] = BuildProgress(s, snapsBy[s.ID], daysBy[s.ID], badgesBy[s.ID], BuildOptions{
			Thresholds: b.thresholds,
			Weeks:      b.weeks,
			LastPeriod: lastPeriod,
			Now:        now,
		})
	}
	return out, nil
}

type BuildOptions struct {
	Thresholds progress.Thresholds
	Weeks      int
	// LastPeriod is the newest closed period in the cohort.
	LastPeriod int
	Now        time.Time
}

// BuildProgress derives the record of a single student from raw rows.
func BuildProgress(student models.Student, snaps []models.Snapshot, activity []models.DailyActivity, badges []models.Badge, opts BuildOptions) StudentProgress {
	offset := 0
	if opts.Weeks > 0 && opts.LastPeriod > opts.Weeks {
		offset = opts.LastPeriod - opts.Weeks
	}
	weeks := opts.Weeks
	if weeks <= 0 {
		weeks = opts.LastPeriod
	}

	var (
		samples []progress.Sample
		live    *models.Snapshot
		latest  *models.Snapshot
	)
	for i := range snaps {
		s := &snaps[i]
		if s.Period == models.LivePeriod {
			live = s
			continue
		}
		if latest == nil || s.Period > latest.Period {
			latest = s
		}
		samples = append(samples, progress.Sample{Period: s.Period - offset, TotalSolved: s.TotalSolved})
	}

	p := StudentProgress{Student: student, Badges: badges, BadgeCount: len(badges)}
	if p.Badges == nil {
		p.Badges = []models.Badge{}
	}
	switch {
	case live != nil:
		p.Stats = *live
		p.Live = &progress.Sample{Period: models.LivePeriod, TotalSolved: live.TotalSolved}
	case latest != nil:
		p.Stats = *latest
	default:
		p.Stats = models.Snapshot{StudentID: student.ID}
	}
	p.AcceptanceRate = p.Stats.AcceptanceRate()

	p.History = progress.ComputeDeltas(samples, weeks, p.Live)
	p.WeeklyValues = p.History.Values
	p.Deltas = p.History.Weekly
	p.CurrentIncrement = p.History.CurrentIncrement()
	p.WeeklyProgress = p.CurrentIncrement

	c := opts.Thresholds.Classify(p.CurrentIncrement)
	p.Trend, p.Status = c.Trend, c.Tier
	p.Active = p.CurrentIncrement > 0
	p.Improvement, p.ImprovementPercent = progress.Improvement(p.History, p.History.Latest(p.Live))

	p.Days = make([]progress.Day, 0, len(activity))
	for _, d := range activity {
		p.Days = append(p.Days, progress.Day{Date: d.Day, Count: d.Count})
		if d.Count > 0 {
			p.TotalActiveDays++
		}
	}
	p.Streak = progress.CurrentStreak(p.Days, opts.Now)
	p.MaxStreak = max(progress.LongestRun(p.Days, 1), p.Stats.MaxStreak)
	if p.Streak == 0 && len(p.Days) == 0 {
		p.Streak = p.Stats.CurrentStreak
	}
	return p
}

// BadgeHistory returns the badge rule input of p.
func (p StudentProgress) BadgeHistory(weeklyRank int) progress.History {
	return progress.History{
		StudentID:   p.Student.ID,
		TotalSolved: p.Stats.TotalSolved,
		Deltas:      p.History,
		Days:        p.Days,
		WeeklyRank:  weeklyRank,
	}
}

// Awards converts stored badges into evaluator input, skipping unknown
// types.
func (p StudentProgress) Awards() []progress.Award {
	out := make([]progress.Award, 0, len(p.Badges))
	for _, b := range p.Badges {
		t, err := progress.ParseBadgeType(b.BadgeType)
		if err != nil {
			continue
		}
		out = append(out, progress.Award{StudentID: b.StudentID, Type: t, EarnedAt: b.EarnedAt})
	}
	return out
}

// Leaderboard scoring.
const (
	ByWeekly = "weekly"
	ByTotal  = "total"
)

// LeaderboardEntry is a ranked row with its student record attached.
type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	Score       int             `json:"score"`
	WeeklyScore int             `json:"weeklyScore"`
	TotalSolved int             `json:"totalSolved"`
	Batch       string          `json:"batch"`
	Student     StudentProgress `json:"student"`
}

// RankCohort ranks records by current increment or total solved.
func RankCohort(cohort []StudentProgress, by string, topN int) []LeaderboardEntry {
	byID := make(map[uuid.UUID]int, len(cohort))
	scores := make([]progress.Score, len(cohort))
	for i, p := range cohort {
		byID[p.Student.ID] = i
		v := p.CurrentIncrement
		if by == ByTotal {
			v = p.Stats.TotalSolved
		}
		scores[i] = progress.Score{StudentID: p.Student.ID, Value: v}
	}

	ranked := progress.BuildLeaderboard(scores, topN)
	out := make([]LeaderboardEntry, len(ranked))
	for i, e := range ranked {
		p := cohort[byID[e.StudentID]]
		out[i] = LeaderboardEntry{
			Rank:        e.Rank,
			Score:       e.Score,
			WeeklyScore: p.CurrentIncrement,
			TotalSolved: p.Stats.TotalSolved,
			Batch:       p.Student.Batch,
			Student:     p,
		}
	}
	return out
}

// Summarize folds a cohort into its trend summary.
func Summarize(cohort []StudentProgress) progress.Summary {
	records := make([]progress.Record, len(cohort))
	for i, p := range cohort {
		records[i] = progress.Record{StudentID: p.Student.ID, Increment: p.CurrentIncrement, Trend: p.Trend}
	}
	return progress.Summarize(records)
}

// sortCohort orders records in place by one of the weekly progress fields.
func sortCohort(cohort []StudentProgress, field, order string) {
	desc := order != "asc"
	less := func(a, b StudentProgress) bool {
		switch field {
		case "name":
			return a.Student.Name < b.Student.Name
		case "newIncrement":
			return a.CurrentIncrement < b.CurrentIncrement
		default:
			return a.Stats.TotalSolved < b.Stats.TotalSolved
		}
	}
	sort.SliceStable(cohort, func(i, j int) bool {
		if desc {
			return less(cohort[j], cohort[i])
		}
		return less(cohort[i], cohort[j])
	})
}
