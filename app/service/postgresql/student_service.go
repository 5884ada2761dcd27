package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	models "student-progress-dashboard/app/models/postgresql"
	"student-progress-dashboard/app/progress"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	repoRedis "student-progress-dashboard/app/repository/redis"
	"student-progress-dashboard/utils"
)

type StudentService struct {
	studentRepo repoPg.StudentRepository
	cohort      *CohortBuilder
	cache       repoRedis.DashboardCache
}

func NewStudentService(studentRepo repoPg.StudentRepository, cohort *CohortBuilder, cache repoRedis.DashboardCache) *StudentService {
	return &StudentService{studentRepo: studentRepo, cohort: cohort, cache: cache}
}

// GetAllStudents serves the paginated student directory.
func (s *StudentService) GetAllStudents(c *fiber.Ctx) error {
	var q models.PaginationQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid query parameters"})
	}
	q.Normalize()

	key := "students:" + c.Request().URI().QueryArgs().String()
	return respondCached(c, s.cache, key, func(ctx context.Context) (any, error) {
		students, total, err := s.studentRepo.ListStudents(ctx, q)
		if err != nil {
			return nil, err
		}
		records, err := s.cohort.Build(ctx, students)
		if err != nil {
			return nil, err
		}
		return models.PaginatedResponse{
			Data: records,
			Meta: models.PaginationMeta{
				CurrentPage: q.Page,
				TotalPage:   (total + q.Limit - 1) / q.Limit,
				TotalData:   total,
				Limit:       q.Limit,
			},
		}, nil
	})
}

// EarnedBadge is a stored badge with its display metadata.
type EarnedBadge struct {
	progress.BadgeInfo
	EarnedAt time.Time `json:"earnedAt"`
}

type StudentDashboard struct {
	StudentProgress
	Badges []EarnedBadge `json:"badges"`
}

// GetStudentDashboard serves the single-student view by LeetCode username.
func (s *StudentService) GetStudentDashboard(c *fiber.Ctx) error {
	username := c.Params("username")
	student, err := s.studentRepo.GetStudentByUsername(c.Context(), username)
	if errors.Is(err, repoPg.ErrStudentNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}
	if err != nil {
		return serverError(c, "failed to load student", err)
	}

	return respondCached(c, s.cache, "student:"+strings.ToLower(student.LeetcodeUsername), func(ctx context.Context) (any, error) {
		records, err := s.cohort.Build(ctx, []models.Student{*student})
		if err != nil {
			return nil, err
		}
		p := records[0]
		dash := StudentDashboard{StudentProgress: p, Badges: make([]EarnedBadge, 0, len(p.Badges))}
		for _, a := range p.Awards() {
			dash.Badges = append(dash.Badges, EarnedBadge{BadgeInfo: a.Type.Info(), EarnedAt: a.EarnedAt})
		}
		return dash, nil
	})
}

type CreateStudentRequest struct {
	Name             string `json:"name" validate:"required,max=120"`
	LeetcodeUsername string `json:"leetcodeUsername" validate:"required,max=60"`
	Batch            string `json:"batch" validate:"omitempty,max=20"`
}

func (s *StudentService) CreateStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.LeetcodeUsername = strings.TrimSpace(req.LeetcodeUsername)
	if err := utils.ValidateStruct(req); err != nil {
		return badRequest(c, err)
	}

	ctx := c.Context()
	if _, err := s.studentRepo.GetStudentByUsername(ctx, req.LeetcodeUsername); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Student with this username already exists"})
	} else if !errors.Is(err, repoPg.ErrStudentNotFound) {
		return serverError(c, "failed to check username", err)
	}

	student := &models.Student{
		Name:                strings.TrimSpace(req.Name),
		LeetcodeUsername:    req.LeetcodeUsername,
		LeetcodeProfileLink: models.ProfileLink(req.LeetcodeUsername),
		Batch:               strings.TrimSpace(req.Batch),
	}
	if err := s.studentRepo.CreateStudent(ctx, student); err != nil {
		return serverError(c, "failed to create student", err)
	}
	invalidate(ctx, s.cache)
	return c.Status(fiber.StatusCreated).JSON(student)
}

type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ImportStudents loads a roster CSV of name,username[,batch]. Rows are
// upserted by username, so re-importing the same file is harmless.
func (s *StudentService) ImportStudents(c *fiber.Ctx) error {
	body, err := uploadedCSV(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	defer body.Close()

	rows, err := readCSV(body, "name")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.Context()
	res := ImportResult{Errors: []string{}}
	for _, r := range rows {
		line, row := r.Line, r.Fields
		if len(row) < 2 {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: expected name,username[,batch]", line))
			continue
		}
		req := CreateStudentRequest{Name: row[0], LeetcodeUsername: row[1]}
		if len(row) > 2 {
			req.Batch = row[2]
		}
		if err := utils.ValidateStruct(req); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, describeValidation(err)))
			continue
		}

		created, err := s.studentRepo.UpsertStudent(ctx, &models.Student{
			Name:                req.Name,
			LeetcodeUsername:    req.LeetcodeUsername,
			LeetcodeProfileLink: models.ProfileLink(req.LeetcodeUsername),
			Batch:               req.Batch,
		})
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	if res.Created+res.Updated > 0 {
		invalidate(ctx, s.cache)
	}
	return c.JSON(res)
}

// uploadedCSV returns the "file" form upload, or the raw body when the
// request is not multipart.
func uploadedCSV(c *fiber.Ctx) (io.ReadCloser, error) {
	if fh, err := c.FormFile("file"); err == nil {
		return fh.Open()
	}
	if len(c.Body()) == 0 {
		return nil, errors.New("CSV file is required")
	}
	return io.NopCloser(strings.NewReader(string(c.Body()))), nil
}

// csvRow is one CSV record with the file line it started on.
type csvRow struct {
	Line   int
	Fields []string
}

// readCSV reads trimmed records, dropping blank lines and a header row whose
// first cell is header.
func readCSV(r io.Reader, header string) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var out []csvRow
	for first := true; ; first = false {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}
		if len(rec) == 0 || (len(rec) == 1 && rec[0] == "") {
			continue
		}
		if first && strings.EqualFold(rec[0], header) {
			continue
		}
		out = append(out, csvRow{Line: line, Fields: rec})
	}
	return out, nil
}

func describeValidation(err error) string {
	var verr *utils.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	parts := make([]string, 0, len(verr.Fields))
	for f, msg := range verr.Fields {
		parts = append(parts, f+" "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
