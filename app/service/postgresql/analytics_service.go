package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"student-progress-dashboard/app/progress"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	repoRedis "student-progress-dashboard/app/repository/redis"
)

type AnalyticsService struct {
	studentRepo repoPg.StudentRepository
	cohort      *CohortBuilder
	cache       repoRedis.DashboardCache
}

func NewAnalyticsService(studentRepo repoPg.StudentRepository, cohort *CohortBuilder, cache repoRedis.DashboardCache) *AnalyticsService {
	return &AnalyticsService{studentRepo: studentRepo, cohort: cohort, cache: cache}
}

func (s *AnalyticsService) loadAll(ctx context.Context) ([]StudentProgress, error) {
	students, err := s.studentRepo.GetAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	return s.cohort.Build(ctx, students)
}

type Improver struct {
	Rank               int             `json:"rank"`
	Improvement        int             `json:"improvement"`
	ImprovementPercent float64         `json:"improvementPercent"`
	Student            StudentProgress `json:"student"`
}

type TierCount struct {
	Tier  progress.Tier `json:"status"`
	Count int           `json:"count"`
}

type Analytics struct {
	Totals         Totals                   `json:"totals"`
	Summary        progress.Summary         `json:"summary"`
	TopPerformers  []LeaderboardEntry       `json:"topPerformers"`
	TopImprovers   []Improver               `json:"topImprovers"`
	Categories     []TierCount              `json:"progressCategories"`
	ClassAverage   []progress.PeriodAverage `json:"classAverage"`
	Students       []StudentProgress        `json:"students"`
	TrackedPeriods int                      `json:"trackedPeriods"`
}

// BuildAnalytics assembles the analytics page from a built cohort.
func BuildAnalytics(cohort []StudentProgress, weeks int) Analytics {
	a := Analytics{
		Totals:         computeTotals(cohort),
		Summary:        Summarize(cohort).Rounded(),
		TopPerformers:  RankCohort(cohort, ByTotal, 10),
		Students:       cohort,
		TrackedPeriods: weeks,
	}

	improvers := make([]StudentProgress, len(cohort))
	copy(improvers, cohort)
	sort.SliceStable(improvers, func(i, j int) bool {
		return improvers[i].Improvement > improvers[j].Improvement
	})
	if len(improvers) > 15 {
		improvers = improvers[:15]
	}
	a.TopImprovers = make([]Improver, len(improvers))
	for i, p := range improvers {
		a.TopImprovers[i] = Improver{
			Rank:               i + 1,
			Improvement:        p.Improvement,
			ImprovementPercent: roundTo(p.ImprovementPercent, 1),
			Student:            p,
		}
	}

	counts := map[progress.Tier]int{}
	series := make([]progress.Deltas, len(cohort))
	for i, p := range cohort {
		counts[p.Status]++
		series[i] = p.History
	}
	for _, t := range []progress.Tier{progress.TierExcellent, progress.TierGood, progress.TierActive, progress.TierUnderperforming} {
		a.Categories = append(a.Categories, TierCount{Tier: t, Count: counts[t]})
	}
	a.ClassAverage = progress.ClassAverageProgression(series, weeks)
	for i := range a.ClassAverage {
		a.ClassAverage[i].Average = roundTo(a.ClassAverage[i].Average, 1)
	}
	return a
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func (s *AnalyticsService) GetAnalytics(c *fiber.Ctx) error {
	return respondCached(c, s.cache, "analytics", func(ctx context.Context) (any, error) {
		cohort, err := s.loadAll(ctx)
		if err != nil {
			return nil, err
		}
		return BuildAnalytics(cohort, s.cohort.Weeks()), nil
	})
}

type WeeklyProgressRow struct {
	Student       StudentProgress `json:"student"`
	WeeklyValues  []int           `json:"weeklyValues"`
	Deltas        []int           `json:"deltas"`
	CurrentSolved int             `json:"currentSolved"`
	NewIncrement  int             `json:"newIncrement"`
	Trend         progress.Trend  `json:"trend"`
	Status        progress.Tier   `json:"status"`
}

type WeeklyProgress struct {
	Weeks   int                 `json:"weeks"`
	Summary progress.Summary    `json:"summary"`
	Rows    []WeeklyProgressRow `json:"students"`
}

var weeklySortFields = map[string]bool{"currentSolved": true, "newIncrement": true, "name": true}

// GetWeeklyProgress serves the week-by-week table.
func (s *AnalyticsService) GetWeeklyProgress(c *fiber.Ctx) error {
	field := c.Query("sort", "currentSolved")
	order := c.Query("order", "desc")
	if !weeklySortFields[field] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sort must be currentSolved, newIncrement or name"})
	}
	if order != "asc" && order != "desc" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "order must be asc or desc"})
	}

	return respondCached(c, s.cache, "weekly:"+field+":"+order, func(ctx context.Context) (any, error) {
		cohort, err := s.loadAll(ctx)
		if err != nil {
			return nil, err
		}
		sortCohort(cohort, field, order)

		out := WeeklyProgress{Weeks: s.cohort.Weeks(), Summary: Summarize(cohort).Rounded()}
		out.Rows = make([]WeeklyProgressRow, len(cohort))
		for i, p := range cohort {
			out.Rows[i] = WeeklyProgressRow{
				Student:       p,
				WeeklyValues:  p.WeeklyValues,
				Deltas:        p.Deltas,
				CurrentSolved: p.Stats.TotalSolved,
				NewIncrement:  p.CurrentIncrement,
				Trend:         p.Trend,
				Status:        p.Status,
			}
		}
		return out, nil
	})
}

// ExportCSV streams every student's progress record as CSV.
func (s *AnalyticsService) ExportCSV(c *fiber.Ctx) error {
	cohort, err := s.loadAll(c.Context())
	if err != nil {
		return serverError(c, "failed to load students", err)
	}

	buf, err := WriteProgressCSV(cohort, s.cohort.Weeks())
	if err != nil {
		return serverError(c, "failed to write CSV", err)
	}

	name := fmt.Sprintf("student-progress-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf)
}

// WriteProgressCSV renders the export with one column per tracked week.
func WriteProgressCSV(cohort []StudentProgress, weeks int) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"name", "username", "batch", "total_solved", "easy", "medium", "hard", "ranking"}
	for i := 1; i <= weeks; i++ {
		header = append(header, fmt.Sprintf("week%d", i))
	}
	header = append(header, "current_increment", "trend", "status", "streak", "max_streak", "badges")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	itoa := strconv.Itoa
	for _, p := range cohort {
		row := []string{
			p.Student.Name,
			p.Student.LeetcodeUsername,
			p.Student.Batch,
			itoa(p.Stats.TotalSolved),
			itoa(p.Stats.EasySolved),
			itoa(p.Stats.MediumSolved),
			itoa(p.Stats.HardSolved),
			itoa(p.Stats.Ranking),
		}
		for i := 0; i < weeks; i++ {
			v := ""
			if i < len(p.WeeklyValues) && p.History.Present[i] {
				v = itoa(p.WeeklyValues[i])
			}
			row = append(row, v)
		}
		row = append(row,
			itoa(p.CurrentIncrement),
			string(p.Trend),
			string(p.Status),
			itoa(p.Streak),
			itoa(p.MaxStreak),
			itoa(p.BadgeCount),
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
