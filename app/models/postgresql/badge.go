package models

import (
	"time"

	"github.com/google/uuid"
)

// Badge is a stored award, unique per (student, badge type).
type Badge struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"studentId"`
	BadgeType string    `json:"badgeType"`
	EarnedAt  time.Time `json:"earnedAt"`
}

// BadgeWithStudent joins a badge with its owner for the badges page.
type BadgeWithStudent struct {
	Badge
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Student     StudentLink `json:"student"`
}

// StudentLink is the minimal student reference embedded in listings.
type StudentLink struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	LeetcodeUsername string    `json:"leetcodeUsername"`
}
