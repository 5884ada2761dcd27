package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	models "student-progress-dashboard/app/models/postgresql"
)

type BadgeRepository interface {
	InsertBadgeIfAbsent(ctx context.Context, studentID uuid.UUID, badgeType string, earnedAt time.Time) (bool, error)
	GetBadgesByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Badge, error)
	GetAllBadges(ctx context.Context) ([]models.BadgeWithStudent, error)
}

type badgeRepository struct {
	db *sql.DB
}

func NewBadgeRepository(db *sql.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

// InsertBadgeIfAbsent stores the badge unless the student already holds one
// of that type. It reports whether a row was written.
func (r *badgeRepository) InsertBadgeIfAbsent(ctx context.Context, studentID uuid.UUID, badgeType string, earnedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO badges (student_id, badge_type, earned_at) VALUES ($1, $2, $3)
		ON CONFLICT (student_id, badge_type) DO NOTHING
	`, studentID, badgeType, earnedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *badgeRepository) GetBadgesByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Badge, error) {
	badges := []models.Badge{}
	if len(ids) == 0 {
		return badges, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, badge_type, earned_at FROM badges
		WHERE student_id::text = ANY($1)
		ORDER BY earned_at ASC
	`, idArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.StudentID, &b.BadgeType, &b.EarnedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// GetAllBadges lists every award newest first with its owner.
func (r *badgeRepository) GetAllBadges(ctx context.Context) ([]models.BadgeWithStudent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.student_id, b.badge_type, b.earned_at, s.id, s.name, s.leetcode_username
		FROM badges b
		JOIN students s ON s.id = b.student_id
		ORDER BY b.earned_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := []models.BadgeWithStudent{}
	for rows.Next() {
		var b models.BadgeWithStudent
		if err := rows.Scan(
			&b.ID,
			&b.StudentID,
			&b.BadgeType,
			&b.EarnedAt,
			&b.Student.ID,
			&b.Student.Name,
			&b.Student.LeetcodeUsername,
		); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
