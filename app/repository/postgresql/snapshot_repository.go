package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	models "student-progress-dashboard/app/models/postgresql"
)

type SnapshotRepository interface {
	UpsertSnapshot(ctx context.Context, s models.Snapshot) error
	GetSnapshotsByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Snapshot, error)
	GetMaxPeriod(ctx context.Context) (int, error)
	CloseWeek(ctx context.Context) (period int, copied int, err error)
	UpsertDailyActivity(ctx context.Context, studentID uuid.UUID, days []models.DailyActivity) error
	GetDailyActivityByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.DailyActivity, error)
}

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func idArray(ids []uuid.UUID) any {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}

// UpsertSnapshot writes s into its (student, period) slot, replacing any
// previous counts.
func (r *snapshotRepository) UpsertSnapshot(ctx context.Context, s models.Snapshot) error {
	query := `
		INSERT INTO snapshots (
			student_id, period, total_solved, easy_solved, medium_solved, hard_solved,
			total_submissions, total_accepted, ranking, current_streak, max_streak, captured_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (student_id, period) DO UPDATE SET
			total_solved = EXCLUDED.total_solved,
			easy_solved = EXCLUDED.easy_solved,
			medium_solved = EXCLUDED.medium_solved,
			hard_solved = EXCLUDED.hard_solved,
			total_submissions = EXCLUDED.total_submissions,
			total_accepted = EXCLUDED.total_accepted,
			ranking = EXCLUDED.ranking,
			current_streak = EXCLUDED.current_streak,
			max_streak = EXCLUDED.max_streak,
			captured_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		s.StudentID,
		s.Period,
		s.TotalSolved,
		s.EasySolved,
		s.MediumSolved,
		s.HardSolved,
		s.TotalSubmissions,
		s.TotalAccepted,
		s.Ranking,
		s.CurrentStreak,
		s.MaxStreak,
	)
	return err
}

// GetSnapshotsByStudentIDs loads every period of the given students ordered
// by student then period.
func (r *snapshotRepository) GetSnapshotsByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Snapshot, error) {
	snapshots := []models.Snapshot{}
	if len(ids) == 0 {
		return snapshots, nil
	}

	query := `
		SELECT id, student_id, period, total_solved, easy_solved, medium_solved, hard_solved,
			total_submissions, total_accepted, ranking, current_streak, max_streak, captured_at
		FROM snapshots
		WHERE student_id::text = ANY($1)
		ORDER BY student_id, period
	`
	rows, err := r.db.QueryContext(ctx, query, idArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(
			&s.ID,
			&s.StudentID,
			&s.Period,
			&s.TotalSolved,
			&s.EasySolved,
			&s.MediumSolved,
			&s.HardSolved,
			&s.TotalSubmissions,
			&s.TotalAccepted,
			&s.Ranking,
			&s.CurrentStreak,
			&s.MaxStreak,
			&s.CapturedAt,
		); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (r *snapshotRepository) GetMaxPeriod(ctx context.Context) (int, error) {
	var period int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(period), 0) FROM snapshots`).Scan(&period)
	return period, err
}

// CloseWeek copies every live snapshot into the next weekly period.
func (r *snapshotRepository) CloseWeek(ctx context.Context) (int, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	// Serialise concurrent closes.
	if _, err := tx.ExecContext(ctx, `LOCK TABLE snapshots IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return 0, 0, fmt.Errorf("lock snapshots: %w", err)
	}

	var period int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(period), 0) + 1 FROM snapshots`).Scan(&period); err != nil {
		return 0, 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (
			student_id, period, total_solved, easy_solved, medium_solved, hard_solved,
			total_submissions, total_accepted, ranking, current_streak, max_streak, captured_at
		)
		SELECT student_id, $1, total_solved, easy_solved, medium_solved, hard_solved,
			total_submissions, total_accepted, ranking, current_streak, max_streak, NOW()
		FROM snapshots WHERE period = $2
		ON CONFLICT (student_id, period) DO NOTHING
	`, period, models.LivePeriod)
	if err != nil {
		return 0, 0, err
	}
	copied, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	if copied == 0 {
		return 0, 0, nil
	}
	return period, int(copied), tx.Commit()
}

// UpsertDailyActivity stores the submission calendar of one student.
func (r *snapshotRepository) UpsertDailyActivity(ctx context.Context, studentID uuid.UUID, days []models.DailyActivity) error {
	if len(days) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_activity (student_id, day, count) VALUES ($1, $2, $3)
		ON CONFLICT (student_id, day) DO UPDATE SET count = EXCLUDED.count
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range days {
		if _, err := stmt.ExecContext(ctx, studentID, d.Day, d.Count); err != nil {
			return fmt.Errorf("daily activity %s: %w", d.Day.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

func (r *snapshotRepository) GetDailyActivityByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.DailyActivity, error) {
	days := []models.DailyActivity{}
	if len(ids) == 0 {
		return days, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id, day, count FROM daily_activity
		WHERE student_id::text = ANY($1)
		ORDER BY student_id, day
	`, idArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d models.DailyActivity
		if err := rows.Scan(&d.StudentID, &d.Day, &d.Count); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
