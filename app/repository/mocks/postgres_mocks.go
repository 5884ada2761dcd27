package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	models "student-progress-dashboard/app/models/postgresql"
)

// --- Student ---

type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) GetAllStudents(ctx context.Context) ([]models.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Student), args.Error(1)
}

func (m *MockStudentRepo) ListStudents(ctx context.Context, q models.PaginationQuery) ([]models.Student, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Student), args.Int(1), args.Error(2)
}

func (m *MockStudentRepo) GetStudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepo) GetStudentByUsername(ctx context.Context, username string) (*models.Student, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepo) GetStudentsByBatch(ctx context.Context, batch string) ([]models.Student, error) {
	args := m.Called(ctx, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Student), args.Error(1)
}

func (m *MockStudentRepo) GetBatches(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStudentRepo) CreateStudent(ctx context.Context, s *models.Student) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStudentRepo) UpsertStudent(ctx context.Context, s *models.Student) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudentRepo) UpdateProfilePhoto(ctx context.Context, id uuid.UUID, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockStudentRepo) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// --- Snapshot ---

type MockSnapshotRepo struct {
	mock.Mock
}

func (m *MockSnapshotRepo) UpsertSnapshot(ctx context.Context, s models.Snapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSnapshotRepo) GetSnapshotsByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Snapshot, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepo) GetMaxPeriod(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSnapshotRepo) CloseWeek(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockSnapshotRepo) UpsertDailyActivity(ctx context.Context, studentID uuid.UUID, days []models.DailyActivity) error {
	args := m.Called(ctx, studentID, days)
	return args.Error(0)
}

func (m *MockSnapshotRepo) GetDailyActivityByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.DailyActivity, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyActivity), args.Error(1)
}

// --- Badge ---

type MockBadgeRepo struct {
	mock.Mock
}

func (m *MockBadgeRepo) InsertBadgeIfAbsent(ctx context.Context, studentID uuid.UUID, badgeType string, earnedAt time.Time) (bool, error) {
	args := m.Called(ctx, studentID, badgeType, earnedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockBadgeRepo) GetBadgesByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Badge, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Badge), args.Error(1)
}

func (m *MockBadgeRepo) GetAllBadges(ctx context.Context) ([]models.BadgeWithStudent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BadgeWithStudent), args.Error(1)
}

// --- User ---

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) EnsureUser(ctx context.Context, username, passwordHash, role string) (bool, error) {
	args := m.Called(ctx, username, passwordHash, role)
	return args.Bool(0), args.Error(1)
}
