package models

import (
	"time"

	"github.com/google/uuid"
)

// LivePeriod is the period of the snapshot refreshed on every sync.
const LivePeriod = 0

// Snapshot is one student's counts at a period. Period 0 is live, 1..N are
// closed weeks.
type Snapshot struct {
	ID               uuid.UUID `json:"id"`
	StudentID        uuid.UUID `json:"studentId"`
	Period           int       `json:"period"`
	TotalSolved      int       `json:"totalSolved"`
	EasySolved       int       `json:"easySolved"`
	MediumSolved     int       `json:"mediumSolved"`
	HardSolved       int       `json:"hardSolved"`
	TotalSubmissions int       `json:"totalSubmissions"`
	TotalAccepted    int       `json:"totalAccepted"`
	Ranking          int       `json:"ranking"`
	CurrentStreak    int       `json:"currentStreak"`
	MaxStreak        int       `json:"maxStreak"`
	CapturedAt       time.Time `json:"capturedAt"`
}

// AcceptanceRate is accepted over total submissions as a percentage.
func (s Snapshot) AcceptanceRate() float64 {
	if s.TotalSubmissions == 0 {
		return 0
	}
	return float64(s.TotalAccepted) / float64(s.TotalSubmissions) * 100
}

// DailyActivity is the submission count of one student on one day.
type DailyActivity struct {
	StudentID uuid.UUID `json:"studentId"`
	Day       time.Time `json:"day"`
	Count     int       `json:"count"`
}
