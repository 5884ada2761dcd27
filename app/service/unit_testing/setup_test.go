package service_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	models "student-progress-dashboard/app/models/postgresql"
	"student-progress-dashboard/app/progress"
	"student-progress-dashboard/app/repository/mocks"
	repoRedis "student-progress-dashboard/app/repository/redis"
	service "student-progress-dashboard/app/service/postgresql"
)

// --- SETUP HELPERS ---

type fixture struct {
	students  *mocks.MockStudentRepo
	snapshots *mocks.MockSnapshotRepo
	badges    *mocks.MockBadgeRepo
	cohort    *service.CohortBuilder
	cache     repoRedis.DashboardCache
}

func newFixture(weeks int) *fixture {
	f := &fixture{
		students:  new(mocks.MockStudentRepo),
		snapshots: new(mocks.MockSnapshotRepo),
		badges:    new(mocks.MockBadgeRepo),
		cache:     repoRedis.NewDashboardCache(nil, 0),
	}
	f.cohort = service.NewCohortBuilder(f.snapshots, f.badges, progress.DefaultThresholds(), weeks)
	return f
}

// withCohortData makes every batch load return the given rows.
func (f *fixture) withCohortData(snaps []models.Snapshot, days []models.DailyActivity, badges []models.Badge) {
	if snaps == nil {
		snaps = []models.Snapshot{}
	}
	if days == nil {
		days = []models.DailyActivity{}
	}
	if badges == nil {
		badges = []models.Badge{}
	}
	f.snapshots.On("GetSnapshotsByStudentIDs", mock.Anything, mock.Anything).Return(snaps, nil)
	f.snapshots.On("GetDailyActivityByStudentIDs", mock.Anything, mock.Anything).Return(days, nil)
	f.badges.On("GetBadgesByStudentIDs", mock.Anything, mock.Anything).Return(badges, nil)
}

func newStudent(name, username, batch string) models.Student {
	return models.Student{
		ID:                  uuid.New(),
		Name:                name,
		LeetcodeUsername:    username,
		LeetcodeProfileLink: models.ProfileLink(username),
		Batch:               batch,
		CreatedAt:           time.Now(),
	}
}

func snap(id uuid.UUID, period, total int) models.Snapshot {
	return models.Snapshot{ID: uuid.New(), StudentID: id, Period: period, TotalSolved: total}
}

func setupApp() *fiber.App {
	return fiber.New()
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out), string(body))
}
