package route

import (
	"database/sql"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"student-progress-dashboard/app/leetcode"
	repoMongo "student-progress-dashboard/app/repository/mongodb"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	repoRedis "student-progress-dashboard/app/repository/redis"
	mongoService "student-progress-dashboard/app/service/mongodb"
	postgreService "student-progress-dashboard/app/service/postgresql"
	"student-progress-dashboard/config"
	"student-progress-dashboard/middleware"
)

func SetupRoutes(app *fiber.App, cfg *config.Config, db *sql.DB, mdb *mongo.Database, rdb *redis.Client) {
	// Repositories
	userRepo := repoPg.NewUserRepository(db)
	studentRepo := repoPg.NewStudentRepository(db)
	snapshotRepo := repoPg.NewSnapshotRepository(db)
	badgeRepo := repoPg.NewBadgeRepository(db)
	reportRepo := repoMongo.NewSyncReportRepository(mdb)
	cache := repoRedis.NewDashboardCache(rdb, cfg.Redis.TTL)

	// Services
	cohort := postgreService.NewCohortBuilder(snapshotRepo, badgeRepo, cfg.Thresholds, cfg.TrackedWeeks)
	authService := postgreService.NewAuthService(userRepo)
	studentService := postgreService.NewStudentService(studentRepo, cohort, cache)
	dashboardService := postgreService.NewDashboardService(studentRepo, cohort, cache)
	analyticsService := postgreService.NewAnalyticsService(studentRepo, cohort, cache)
	badgeService := postgreService.NewBadgeService(badgeRepo, cache)
	snapshotService := postgreService.NewSnapshotService(snapshotRepo, studentRepo, cache)
	syncService := postgreService.NewSyncService(postgreService.SyncDeps{
		Students:  studentRepo,
		Snapshots: snapshotRepo,
		Badges:    badgeRepo,
		Reports:   reportRepo,
		Fetcher: leetcode.New(leetcode.Options{
			URL:   cfg.LeetCode.URL,
			RPS:   cfg.LeetCode.RPS,
			Burst: cfg.LeetCode.Burst,
		}),
		Cohort:      cohort,
		Rules:       cfg.Badges,
		Concurrency: cfg.SyncConcurrency,
		Cache:       cache,
	})
	reportService := mongoService.NewReportService(reportRepo)

	api := app.Group("/api/v1")
	admin := []fiber.Handler{middleware.AuthRequired(), middleware.RoleAllowed("admin")}

	// Authentication
	auth := api.Group("/auth")
	auth.Post("/login", authService.Login)
	auth.Post("/refresh", authService.Refresh)
	auth.Get("/profile", middleware.AuthRequired(), authService.Profile)

	// Students
	students := api.Group("/students")
	students.Get("/", studentService.GetAllStudents)
	students.Get("/:username/dashboard", studentService.GetStudentDashboard)
	students.Post("/", append(admin, studentService.CreateStudent)...)
	students.Post("/import", append(admin, studentService.ImportStudents)...)

	// Dashboards
	dash := api.Group("/dashboard")
	dash.Get("/admin", dashboardService.GetAdminDashboard)
	dash.Get("/batch/:batch", dashboardService.GetBatchDashboard)
	dash.Get("/university", dashboardService.GetUniversityDashboard)

	api.Get("/leaderboard", dashboardService.GetLeaderboard)
	api.Get("/rankings", dashboardService.GetRankings)
	api.Get("/analytics", analyticsService.GetAnalytics)
	api.Get("/weekly-progress", analyticsService.GetWeeklyProgress)
	api.Get("/export/csv", analyticsService.ExportCSV)

	// Badges
	api.Get("/badges", badgeService.GetAllBadges)
	api.Get("/badges/types", badgeService.GetBadgeTypes)

	// Sync
	sync := api.Group("/sync", admin...)
	sync.Post("/all", syncService.SyncAll)
	sync.Post("/student/:id", syncService.SyncStudent)
	sync.Post("/profile-photos", syncService.SyncProfilePhotos)
	sync.Get("/reports", reportService.GetReports)
	sync.Get("/reports/:id", reportService.GetReportByID)

	// Weekly snapshots
	api.Post("/import/weekly-progress", append(admin, snapshotService.ImportWeeklyProgress)...)
	api.Post("/snapshots/close-week", append(admin, snapshotService.CloseWeek)...)
}
