package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"student-progress-dashboard/app/leetcode"
	models "student-progress-dashboard/app/models/mongodb"
)

type MockSyncReportRepo struct {
	mock.Mock
}

func (m *MockSyncReportRepo) InsertReport(ctx context.Context, report *models.SyncReport) (primitive.ObjectID, error) {
	args := m.Called(ctx, report)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockSyncReportRepo) GetRecentReports(ctx context.Context, limit int64) ([]models.SyncReport, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncReport), args.Error(1)
}

func (m *MockSyncReportRepo) GetReportByID(ctx context.Context, id primitive.ObjectID) (*models.SyncReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncReport), args.Error(1)
}

// MockProfileFetcher stands in for the LeetCode client.
type MockProfileFetcher struct {
	mock.Mock
}

func (m *MockProfileFetcher) FetchProfile(ctx context.Context, username string) (*leetcode.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leetcode.Profile), args.Error(1)
}
