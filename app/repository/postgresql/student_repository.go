package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	models "student-progress-dashboard/app/models/postgresql"
)

var ErrStudentNotFound = errors.New("student not found")

type StudentRepository interface {
	GetAllStudents(ctx context.Context) ([]models.Student, error)
	ListStudents(ctx context.Context, q models.PaginationQuery) ([]models.Student, int, error)
	GetStudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	GetStudentByUsername(ctx context.Context, username string) (*models.Student, error)
	GetStudentsByBatch(ctx context.Context, batch string) ([]models.Student, error)
	GetBatches(ctx context.Context) ([]string, error)
	CreateStudent(ctx context.Context, s *models.Student) error
	UpsertStudent(ctx context.Context, s *models.Student) (bool, error)
	UpdateProfilePhoto(ctx context.Context, id uuid.UUID, url string) error
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error
}

type studentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) StudentRepository {
	return &studentRepository{db: db}
}

const studentColumns = `id, name, leetcode_username, leetcode_profile_link, profile_photo, batch, last_synced_at, created_at`

func scanStudent(row interface{ Scan(...any) error }) (models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.LeetcodeUsername,
		&s.LeetcodeProfileLink,
		&s.ProfilePhoto,
		&s.Batch,
		&s.LastSyncedAt,
		&s.CreatedAt,
	)
	return s, err
}

func (r *studentRepository) queryStudents(ctx context.Context, query string, args ...any) ([]models.Student, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *studentRepository) GetAllStudents(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY name ASC`
	return r.queryStudents(ctx, query)
}

// ListStudents returns one page of the directory plus the total row count
// matching the filters.
func (r *studentRepository) ListStudents(ctx context.Context, q models.PaginationQuery) ([]models.Student, int, error) {
	q.Normalize()

	// 1. Bangun WHERE clause, dipakai untuk COUNT dan SELECT
	where := ` WHERE 1=1`
	var args []any
	argCount := 1

	if q.Batch != "" {
		where += fmt.Sprintf(" AND batch = $%d", argCount)
		args = append(args, q.Batch)
		argCount++
	}
	if q.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR leetcode_username ILIKE $%d)", argCount, argCount)
		args = append(args, "%"+q.Search+"%")
		argCount++
	}

	// 2. Hitung total data untuk pagination
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// 3. Query data + sorting (default: nama A-Z)
	query := `SELECT ` + studentColumns + ` FROM students` + where
	switch q.Sort {
	case "newest":
		query += ` ORDER BY created_at DESC`
	case "username":
		query += ` ORDER BY leetcode_username ASC`
	default:
		query += ` ORDER BY name ASC`
	}
	// 4. Pagination
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, q.Limit, q.Offset())

	students, err := r.queryStudents(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepository) GetStudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	s, err := scanStudent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepository) GetStudentByUsername(ctx context.Context, username string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE LOWER(leetcode_username) = LOWER($1)`
	s, err := scanStudent(r.db.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepository) GetStudentsByBatch(ctx context.Context, batch string) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE batch = $1 ORDER BY name ASC`
	return r.queryStudents(ctx, query, batch)
}

func (r *studentRepository) GetBatches(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT batch FROM students WHERE batch <> '' ORDER BY batch`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// CreateStudent inserts s and fills in its ID and CreatedAt.
func (r *studentRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	query := `
		INSERT INTO students (name, leetcode_username, leetcode_profile_link, batch)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		s.Name,
		s.LeetcodeUsername,
		s.LeetcodeProfileLink,
		s.Batch,
	).Scan(&s.ID, &s.CreatedAt)
}

// UpsertStudent inserts s or updates the name and batch of the existing row
// with the same username. It reports whether a new row was created.
func (r *studentRepository) UpsertStudent(ctx context.Context, s *models.Student) (bool, error) {
	query := `
		INSERT INTO students (name, leetcode_username, leetcode_profile_link, batch)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (leetcode_username) DO UPDATE
		SET name = EXCLUDED.name, batch = EXCLUDED.batch, updated_at = NOW()
		RETURNING id, created_at, (xmax = 0)
	`
	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		s.Name,
		s.LeetcodeUsername,
		s.LeetcodeProfileLink,
		s.Batch,
	).Scan(&s.ID, &s.CreatedAt, &inserted)
	return inserted, err
}

func (r *studentRepository) UpdateProfilePhoto(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE students SET profile_photo = $1, updated_at = NOW() WHERE id = $2`, url, id)
	return err
}

func (r *studentRepository) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE students SET last_synced_at = $1, updated_at = NOW() WHERE id = $2`, at, id)
	return err
}
