package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SyncReport is one sync run stored in the sync_reports collection.
type SyncReport struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind       string             `bson:"kind" json:"kind"`
	StartedAt  time.Time          `bson:"started_at" json:"startedAt"`
	FinishedAt time.Time          `bson:"finished_at" json:"finishedAt"`
	Success    int                `bson:"success" json:"success"`
	Failed     int                `bson:"failed" json:"failed"`
	NewBadges  int                `bson:"new_badges" json:"newBadges"`
	Results    []SyncResult       `bson:"results" json:"results"`
}

// SyncResult is the outcome for one student within a run.
type SyncResult struct {
	StudentID   string   `bson:"student_id" json:"studentId"`
	Username    string   `bson:"username" json:"username"`
	OK          bool     `bson:"ok" json:"ok"`
	Error       string   `bson:"error,omitempty" json:"error,omitempty"`
	TotalSolved int      `bson:"total_solved" json:"totalSolved"`
	NewBadges   []string `bson:"new_badges,omitempty" json:"newBadges,omitempty"`
}

// Sync report kinds.
const (
	SyncKindAll           = "all"
	SyncKindStudent       = "student"
	SyncKindProfilePhotos = "profile_photos"
)
