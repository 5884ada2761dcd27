package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on every start; every statement is idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username VARCHAR(60) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'admin',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(120) NOT NULL,
		leetcode_username VARCHAR(60) NOT NULL UNIQUE,
		leetcode_profile_link TEXT NOT NULL,
		profile_photo TEXT,
		batch VARCHAR(20) NOT NULL DEFAULT '',
		last_synced_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_batch ON students(batch)`,

	`CREATE TABLE IF NOT EXISTS snapshots (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		period INTEGER NOT NULL CHECK (period >= 0),
		total_solved INTEGER NOT NULL DEFAULT 0,
		easy_solved INTEGER NOT NULL DEFAULT 0,
		medium_solved INTEGER NOT NULL DEFAULT 0,
		hard_solved INTEGER NOT NULL DEFAULT 0,
		total_submissions INTEGER NOT NULL DEFAULT 0,
		total_accepted INTEGER NOT NULL DEFAULT 0,
		ranking INTEGER NOT NULL DEFAULT 0,
		current_streak INTEGER NOT NULL DEFAULT 0,
		max_streak INTEGER NOT NULL DEFAULT 0,
		captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, period)
	)`,

	`CREATE TABLE IF NOT EXISTS daily_activity (
		student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		day DATE NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (student_id, day)
	)`,

	`CREATE TABLE IF NOT EXISTS badges (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		badge_type VARCHAR(40) NOT NULL,
		earned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, badge_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_badges_earned_at ON badges(earned_at DESC)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
