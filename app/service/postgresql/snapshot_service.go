package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	models "student-progress-dashboard/app/models/postgresql"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	repoRedis "student-progress-dashboard/app/repository/redis"
	"student-progress-dashboard/utils"
)

type SnapshotService struct {
	snapshotRepo repoPg.SnapshotRepository
	studentRepo  repoPg.StudentRepository
	cache        repoRedis.DashboardCache
}

func NewSnapshotService(snapshotRepo repoPg.SnapshotRepository, studentRepo repoPg.StudentRepository, cache repoRedis.DashboardCache) *SnapshotService {
	return &SnapshotService{snapshotRepo: snapshotRepo, studentRepo: studentRepo, cache: cache}
}

type WeeklyImportResult struct {
	Students  int      `json:"students"`
	Snapshots int      `json:"snapshots"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// ImportWeeklyProgress loads historical totals from a CSV of
// username,week1,...,weekN. Column k fills period k; blank cells are
// skipped so a missing week stays missing.
func (s *SnapshotService) ImportWeeklyProgress(c *fiber.Ctx) error {
	body, err := uploadedCSV(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	defer body.Close()

	rows, err := readCSV(body, "username")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.Context()
	res := WeeklyImportResult{Errors: []string{}}
	for _, r := range rows {
		line, row := r.Line, r.Fields
		student, err := s.studentRepo.GetStudentByUsername(ctx, row[0])
		if errors.Is(err, repoPg.ErrStudentNotFound) {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: unknown student %q", line, row[0]))
			continue
		}
		if err != nil {
			return serverError(c, "failed to load student", err)
		}

		written, rowErr := 0, error(nil)
		for col := 1; col < len(row); col++ {
			if row[col] == "" {
				continue
			}
			total, err := strconv.Atoi(row[col])
			if err != nil || total < 0 {
				rowErr = fmt.Errorf("row %d: week %d: invalid count %q", line, col, row[col])
				break
			}
			snap := models.Snapshot{StudentID: student.ID, Period: col, TotalSolved: total}
			if err := s.snapshotRepo.UpsertSnapshot(ctx, snap); err != nil {
				rowErr = fmt.Errorf("row %d: week %d: %v", line, col, err)
				break
			}
			written++
		}
		res.Snapshots += written
		if rowErr != nil {
			res.Failed++
			res.Errors = append(res.Errors, rowErr.Error())
			continue
		}
		res.Students++
	}

	if res.Snapshots > 0 {
		invalidate(ctx, s.cache)
	}
	return c.JSON(res)
}

// CloseWeek freezes the live snapshots as the next weekly period.
func (s *SnapshotService) CloseWeek(c *fiber.Ctx) error {
	ctx := c.Context()
	period, copied, err := s.snapshotRepo.CloseWeek(ctx)
	if err != nil {
		return serverError(c, "failed to close week", err)
	}
	if copied == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no live snapshots to close, run a sync first"})
	}

	utils.LogInfo("closed week %d with %d snapshots", period, copied)
	invalidate(ctx, s.cache)
	return c.JSON(fiber.Map{"period": period, "snapshots": copied})
}
