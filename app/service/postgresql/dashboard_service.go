package service

import (
	"context"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"student-progress-dashboard/app/progress"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	repoRedis "student-progress-dashboard/app/repository/redis"
)

type DashboardService struct {
	studentRepo repoPg.StudentRepository
	cohort      *CohortBuilder
	cache       repoRedis.DashboardCache
}

func NewDashboardService(studentRepo repoPg.StudentRepository, cohort *CohortBuilder, cache repoRedis.DashboardCache) *DashboardService {
	return &DashboardService{studentRepo: studentRepo, cohort: cohort, cache: cache}
}

// Totals are the headline counters shared by the admin, batch and
// university dashboards.
type Totals struct {
	TotalStudents    int     `json:"totalStudents"`
	ActiveStudents   int     `json:"activeStudents"`
	TotalProblems    int     `json:"totalProblems"`
	AvgProblems      float64 `json:"avgProblems"`
	AvgMaxStreak     float64 `json:"avgMaxStreak"`
	MaxStreakOverall int     `json:"maxStreakOverall"`
	Underperforming  int     `json:"underperforming"`
}

func computeTotals(cohort []StudentProgress) Totals {
	t := Totals{TotalStudents: len(cohort)}
	streaks := 0
	for _, p := range cohort {
		t.TotalProblems += p.Stats.TotalSolved
		streaks += p.MaxStreak
		if p.Active {
			t.ActiveStudents++
		}
		if p.Status == progress.TierUnderperforming {
			t.Underperforming++
		}
		t.MaxStreakOverall = max(t.MaxStreakOverall, p.MaxStreak)
	}
	if t.TotalStudents > 0 {
		n := float64(t.TotalStudents)
		t.AvgProblems = math.Round(float64(t.TotalProblems) / n)
		t.AvgMaxStreak = math.Round(float64(streaks)/n*10) / 10
	}
	return t
}

func (s *DashboardService) loadAll(ctx context.Context) ([]StudentProgress, error) {
	students, err := s.studentRepo.GetAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	return s.cohort.Build(ctx, students)
}

type AdminDashboard struct {
	Totals
	Summary     progress.Summary   `json:"summary"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

func (s *DashboardService) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	cohort, err := s.loadAll(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	return AdminDashboard{
		Totals:      computeTotals(cohort),
		Summary:     Summarize(cohort).Rounded(),
		Leaderboard: RankCohort(cohort, ByWeekly, 5),
	}, nil
}

func (s *DashboardService) GetAdminDashboard(c *fiber.Ctx) error {
	return respondCached(c, s.cache, "admin", func(ctx context.Context) (any, error) {
		return s.AdminDashboard(ctx)
	})
}

type BatchDashboard struct {
	Batch string `json:"batch"`
	Totals
	Summary  progress.Summary   `json:"summary"`
	Students []StudentProgress  `json:"students"`
	Top      []LeaderboardEntry `json:"leaderboard"`
}

func (s *DashboardService) BatchDashboard(ctx context.Context, batch string) (BatchDashboard, error) {
	students, err := s.studentRepo.GetStudentsByBatch(ctx, batch)
	if err != nil {
		return BatchDashboard{}, err
	}
	cohort, err := s.cohort.Build(ctx, students)
	if err != nil {
		return BatchDashboard{}, err
	}
	return BatchDashboard{
		Batch:    batch,
		Totals:   computeTotals(cohort),
		Summary:  Summarize(cohort).Rounded(),
		Students: cohort,
		Top:      RankCohort(cohort, ByTotal, 20),
	}, nil
}

func (s *DashboardService) GetBatchDashboard(c *fiber.Ctx) error {
	batch := c.Params("batch")
	if batch == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "batch is required"})
	}
	return respondCached(c, s.cache, "batch:"+batch, func(ctx context.Context) (any, error) {
		return s.BatchDashboard(ctx, batch)
	})
}

type BatchTop struct {
	Batch       string             `json:"batch"`
	Totals      Totals             `json:"totals"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type UniversityDashboard struct {
	Combined struct {
		Totals
		UniversityLeaderboard []LeaderboardEntry `json:"universityLeaderboard"`
	} `json:"combined"`
	Batches []BatchTop `json:"batches"`
}

// UniversityDashboard combines every batch and ranks each one on its own.
func (s *DashboardService) UniversityDashboard(ctx context.Context) (UniversityDashboard, error) {
	var out UniversityDashboard
	cohort, err := s.loadAll(ctx)
	if err != nil {
		return out, err
	}
	out.Combined.Totals = computeTotals(cohort)
	out.Combined.UniversityLeaderboard = RankCohort(cohort, ByTotal, 0)

	batches, err := s.studentRepo.GetBatches(ctx)
	if err != nil {
		return out, err
	}
	byBatch := make(map[string][]StudentProgress, len(batches))
	for _, p := range cohort {
		byBatch[p.Student.Batch] = append(byBatch[p.Student.Batch], p)
	}
	out.Batches = make([]BatchTop, 0, len(batches))
	for _, b := range batches {
		members := byBatch[b]
		out.Batches = append(out.Batches, BatchTop{
			Batch:       b,
			Totals:      computeTotals(members),
			Leaderboard: RankCohort(members, ByTotal, 10),
		})
	}
	return out, nil
}

func (s *DashboardService) GetUniversityDashboard(c *fiber.Ctx) error {
	return respondCached(c, s.cache, "university", func(ctx context.Context) (any, error) {
		return s.UniversityDashboard(ctx)
	})
}

// GetLeaderboard ranks the cohort by weekly increment (default) or total.
func (s *DashboardService) GetLeaderboard(c *fiber.Ctx) error {
	by := c.Query("by", ByWeekly)
	if by != ByWeekly && by != ByTotal {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "by must be weekly or total"})
	}
	limit := queryLimit(c, 10, 500)

	key := "leaderboard:" + by + ":" + strconv.Itoa(limit)
	return respondCached(c, s.cache, key, func(ctx context.Context) (any, error) {
		cohort, err := s.loadAll(ctx)
		if err != nil {
			return nil, err
		}
		return RankCohort(cohort, by, limit), nil
	})
}

// GetRankings ranks every student by total solved.
func (s *DashboardService) GetRankings(c *fiber.Ctx) error {
	return respondCached(c, s.cache, "rankings", func(ctx context.Context) (any, error) {
		cohort, err := s.loadAll(ctx)
		if err != nil {
			return nil, err
		}
		return RankCohort(cohort, ByTotal, 0), nil
	})
}
