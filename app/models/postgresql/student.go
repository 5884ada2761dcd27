package models

import (
	"time"

	"github.com/google/uuid"
)

// Student is a tracked learner and their LeetCode identity.
type Student struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name" validate:"required,max=120"`
	LeetcodeUsername    string     `json:"leetcodeUsername" validate:"required,max=60"`
	LeetcodeProfileLink string     `json:"leetcodeProfileLink"`
	ProfilePhoto        *string    `json:"profilePhoto,omitempty"`
	Batch               string     `json:"batch" validate:"omitempty,max=20"`
	LastSyncedAt        *time.Time `json:"lastSyncedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// ProfileLink builds the public profile URL for a username.
func ProfileLink(username string) string {
	return "https://leetcode.com/u/" + username + "/"
}
