package service

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	repoMongo "student-progress-dashboard/app/repository/mongodb"
)

type ReportService struct {
	reportRepo repoMongo.SyncReportRepository
}

func NewReportService(reportRepo repoMongo.SyncReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// GetReports lists recent sync runs, newest first.
func (s *ReportService) GetReports(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	reports, err := s.reportRepo.GetRecentReports(c.Context(), int64(limit))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load sync reports"})
	}
	return c.JSON(fiber.Map{"data": reports})
}

func (s *ReportService) GetReportByID(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report ID"})
	}

	report, err := s.reportRepo.GetReportByID(c.Context(), id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load sync report"})
	}
	return c.JSON(report)
}
