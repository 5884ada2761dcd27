package service_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	models "student-progress-dashboard/app/models/postgresql"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	service "student-progress-dashboard/app/service/postgresql"
)

func setupSnapshotServiceTest() (*service.SnapshotService, *fixture) {
	f := newFixture(4)
	return service.NewSnapshotService(f.snapshots, f.students, f.cache), f
}

func TestImportWeeklyProgress(t *testing.T) {
	svc, f := setupSnapshotServiceTest()
	app := setupApp()

	alice := newStudent("Alice", "alice", "2027")
	f.students.On("GetStudentByUsername", mock.Anything, "alice").Return(&alice, nil)
	f.students.On("GetStudentByUsername", mock.Anything, "ghost").Return(nil, repoPg.ErrStudentNotFound)
	f.snapshots.On("UpsertSnapshot", mock.Anything, mock.MatchedBy(func(s models.Snapshot) bool {
		return s.StudentID == alice.ID && s.Period >= 1
	})).Return(nil)

	app.Post("/import/weekly-progress", svc.ImportWeeklyProgress)

	csv := "username,week1,week2,week3\nalice,10,,22\nghost,1,2,3\n"
	req := httptest.NewRequest("POST", "/import/weekly-progress", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	resp, _ := app.Test(req)

	assert.Equal(t, 200, resp.StatusCode)
	var res service.WeeklyImportResult
	decode(t, resp, &res)
	assert.Equal(t, 1, res.Students)
	assert.Equal(t, 2, res.Snapshots)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{`row 3: unknown student "ghost"`}, res.Errors)

	f.snapshots.AssertNumberOfCalls(t, "UpsertSnapshot", 2)
	f.snapshots.AssertCalled(t, "UpsertSnapshot", mock.Anything, models.Snapshot{StudentID: alice.ID, Period: 3, TotalSolved: 22})
}

func TestImportWeeklyProgressRejectsEmptyBody(t *testing.T) {
	svc, _ := setupSnapshotServiceTest()
	app := setupApp()
	app.Post("/import/weekly-progress", svc.ImportWeeklyProgress)

	resp, _ := app.Test(httptest.NewRequest("POST", "/import/weekly-progress", nil))
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCloseWeek(t *testing.T) {
	t.Run("Success: Close Week", func(t *testing.T) {
		svc, f := setupSnapshotServiceTest()
		app := setupApp()

		f.snapshots.On("CloseWeek", mock.Anything).Return(5, 12, nil)
		app.Post("/snapshots/close-week", svc.CloseWeek)

		resp, _ := app.Test(httptest.NewRequest("POST", "/snapshots/close-week", nil))
		assert.Equal(t, 200, resp.StatusCode)

		var body struct {
			Period    int `json:"period"`
			Snapshots int `json:"snapshots"`
		}
		decode(t, resp, &body)
		assert.Equal(t, 5, body.Period)
		assert.Equal(t, 12, body.Snapshots)
	})

	t.Run("Error: nothing to close", func(t *testing.T) {
		svc, f := setupSnapshotServiceTest()
		app := setupApp()

		f.snapshots.On("CloseWeek", mock.Anything).Return(0, 0, nil)
		app.Post("/snapshots/close-week", svc.CloseWeek)

		resp, _ := app.Test(httptest.NewRequest("POST", "/snapshots/close-week", nil))
		assert.Equal(t, 409, resp.StatusCode)
	})

	t.Run("Error: Database Failure", func(t *testing.T) {
		svc, f := setupSnapshotServiceTest()
		app := setupApp()

		f.snapshots.On("CloseWeek", mock.Anything).Return(0, 0, errors.New("db error"))
		app.Post("/snapshots/close-week", svc.CloseWeek)

		resp, _ := app.Test(httptest.NewRequest("POST", "/snapshots/close-week", nil))
		assert.Equal(t, 500, resp.StatusCode)
	})
}
