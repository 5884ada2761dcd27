package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"student-progress-dashboard/app/leetcode"
	modelMongo "student-progress-dashboard/app/models/mongodb"
	models "student-progress-dashboard/app/models/postgresql"
	"student-progress-dashboard/app/progress"
	repoMongo "student-progress-dashboard/app/repository/mongodb"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	repoRedis "student-progress-dashboard/app/repository/redis"
	"student-progress-dashboard/utils"
)

// ProfileFetcher is the slice of the LeetCode client sync needs.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, username string) (*leetcode.Profile, error)
}

type SyncService struct {
	studentRepo  repoPg.StudentRepository
	snapshotRepo repoPg.SnapshotRepository
	badgeRepo    repoPg.BadgeRepository
	reportRepo   repoMongo.SyncReportRepository
	fetcher      ProfileFetcher
	cohort       *CohortBuilder
	rules        progress.BadgeRules
	concurrency  int
	cache        repoRedis.DashboardCache
	now          func() time.Time
}

type SyncDeps struct {
	Students    repoPg.StudentRepository
	Snapshots   repoPg.SnapshotRepository
	Badges      repoPg.BadgeRepository
	Reports     repoMongo.SyncReportRepository
	Fetcher     ProfileFetcher
	Cohort      *CohortBuilder
	Rules       progress.BadgeRules
	Concurrency int
	Cache       repoRedis.DashboardCache
}

func NewSyncService(d SyncDeps) *SyncService {
	if d.Concurrency <= 0 {
		d.Concurrency = 1
	}
	return &SyncService{
		studentRepo:  d.Students,
		snapshotRepo: d.Snapshots,
		badgeRepo:    d.Badges,
		reportRepo:   d.Reports,
		fetcher:      d.Fetcher,
		cohort:       d.Cohort,
		rules:        d.Rules,
		concurrency:  d.Concurrency,
		cache:        d.Cache,
		now:          time.Now,
	}
}

// SyncSummary is the reply of every sync endpoint.
type SyncSummary struct {
	Success   int      `json:"success"`
	Failed    int      `json:"failed"`
	NewBadges int      `json:"newBadges"`
	Errors    []string `json:"errors"`
	ReportID  string   `json:"reportId,omitempty"`
}

func summarize(r *modelMongo.SyncReport) SyncSummary {
	out := SyncSummary{Success: r.Success, Failed: r.Failed, NewBadges: r.NewBadges, Errors: []string{}}
	if !r.ID.IsZero() {
		out.ReportID = r.ID.Hex()
	}
	for _, res := range r.Results {
		if !res.OK {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", res.Username, res.Error))
		}
	}
	return out
}

// SyncStudents refreshes every student in parallel, bounded by the
// configured concurrency. A failing student is recorded and never stops
// the others. When rankWeekly is set the weekly topper badge is awarded
// once everyone is done.
func (s *SyncService) SyncStudents(ctx context.Context, students []models.Student, kind string, rankWeekly bool) *modelMongo.SyncReport {
	report := &modelMongo.SyncReport{Kind: kind, StartedAt: s.now()}
	results := make([]modelMongo.SyncResult, len(students))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range students {
		g.Go(func() error {
			results[i] = s.syncOne(ctx, students[i])
			return nil
		})
	}
	_ = g.Wait()

	if rankWeekly {
		s.awardWeeklyToppers(ctx, students, results)
	}

	for _, res := range results {
		if res.OK {
			report.Success++
		} else {
			report.Failed++
		}
		report.NewBadges += len(res.NewBadges)
	}
	report.Results = results
	report.FinishedAt = s.now()

	s.saveReport(ctx, report)
	invalidate(ctx, s.cache)
	utils.LogInfo("sync %s finished: %d ok, %d failed, %d new badges in %s",
		kind, report.Success, report.Failed, report.NewBadges, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report
}

func (s *SyncService) syncOne(ctx context.Context, st models.Student) modelMongo.SyncResult {
	res := modelMongo.SyncResult{StudentID: st.ID.String(), Username: st.LeetcodeUsername}
	fail := func(err error) modelMongo.SyncResult {
		res.Error = err.Error()
		utils.LogError("sync %s: %v", st.LeetcodeUsername, err)
		return res
	}

	profile, err := s.fetcher.FetchProfile(ctx, st.LeetcodeUsername)
	if err != nil {
		return fail(err)
	}

	now := s.now()
	days := make([]progress.Day, len(profile.Calendar))
	activity := make([]models.DailyActivity, len(profile.Calendar))
	for i, d := range profile.Calendar {
		days[i] = progress.Day{Date: d.Date, Count: d.Count}
		activity[i] = models.DailyActivity{StudentID: st.ID, Day: d.Date, Count: d.Count}
	}

	live := models.Snapshot{
		StudentID:        st.ID,
		Period:           models.LivePeriod,
		TotalSolved:      profile.TotalSolved,
		EasySolved:       profile.EasySolved,
		MediumSolved:     profile.MediumSolved,
		HardSolved:       profile.HardSolved,
		TotalSubmissions: profile.TotalSubmissions,
		TotalAccepted:    profile.TotalAccepted,
		Ranking:          profile.Ranking,
		CurrentStreak:    profile.Streak,
		MaxStreak:        progress.LongestRun(days, 1),
	}
	if len(days) > 0 {
		live.CurrentStreak = progress.CurrentStreak(days, now)
	}

	if err := s.snapshotRepo.UpsertSnapshot(ctx, live); err != nil {
		return fail(fmt.Errorf("save snapshot: %w", err))
	}
	if err := s.snapshotRepo.UpsertDailyActivity(ctx, st.ID, activity); err != nil {
		return fail(fmt.Errorf("save daily activity: %w", err))
	}
	if profile.AvatarURL != "" && (st.ProfilePhoto == nil || *st.ProfilePhoto != profile.AvatarURL) {
		if err := s.studentRepo.UpdateProfilePhoto(ctx, st.ID, profile.AvatarURL); err != nil {
			return fail(fmt.Errorf("save profile photo: %w", err))
		}
	}
	if err := s.studentRepo.MarkSynced(ctx, st.ID, now); err != nil {
		return fail(fmt.Errorf("mark synced: %w", err))
	}
	res.TotalSolved = profile.TotalSolved

	newBadges, err := s.evaluateBadges(ctx, st)
	if err != nil {
		return fail(fmt.Errorf("evaluate badges: %w", err))
	}
	res.NewBadges = newBadges
	res.OK = true
	return res
}

// evaluateBadges awards every badge the student newly qualifies for except
// the weekly topper, which needs the whole cohort.
func (s *SyncService) evaluateBadges(ctx context.Context, st models.Student) ([]string, error) {
	records, err := s.cohort.Build(ctx, []models.Student{st})
	if err != nil {
		return nil, err
	}
	p := records[0]
	now := s.now()
	ev := s.rules.Evaluate(p.BadgeHistory(0), p.Awards(), now)

	var awarded []string
	for _, a := range ev.New {
		inserted, err := s.badgeRepo.InsertBadgeIfAbsent(ctx, st.ID, string(a.Type), a.EarnedAt)
		if err != nil {
			return awarded, err
		}
		if inserted {
			awarded = append(awarded, string(a.Type))
		}
	}
	return awarded, nil
}

// awardWeeklyToppers ranks the students that synced successfully by current
// increment and awards the top ranks. A failed student keeps stale figures
// and is left out. A zero or negative increment never tops the week.
func (s *SyncService) awardWeeklyToppers(ctx context.Context, students []models.Student, results []modelMongo.SyncResult) {
	index := make(map[uuid.UUID]int, len(students))
	synced := make([]models.Student, 0, len(students))
	for i, st := range students {
		if results[i].OK {
			index[st.ID] = i
			synced = append(synced, st)
		}
	}
	if len(synced) == 0 {
		return
	}

	cohort, err := s.cohort.Build(ctx, synced)
	if err != nil {
		utils.LogError("weekly topper: %v", err)
		return
	}

	scores := make([]progress.Score, len(cohort))
	for i, p := range cohort {
		scores[i] = progress.Score{StudentID: p.Student.ID, Value: p.CurrentIncrement}
	}
	board := progress.BuildLeaderboard(scores, s.rules.TopperRanks)

	for _, p := range cohort {
		rank := progress.RankOf(board, p.Student.ID)
		if rank == 0 || p.CurrentIncrement <= 0 || !s.rules.Qualifies(progress.BadgeWeeklyTopper, p.BadgeHistory(rank)) {
			continue
		}
		inserted, err := s.badgeRepo.InsertBadgeIfAbsent(ctx, p.Student.ID, string(progress.BadgeWeeklyTopper), s.now())
		if err != nil {
			utils.LogError("weekly topper %s: %v", p.Student.LeetcodeUsername, err)
			continue
		}
		if inserted {
			i := index[p.Student.ID]
			results[i].NewBadges = append(results[i].NewBadges, string(progress.BadgeWeeklyTopper))
		}
	}
}

func (s *SyncService) saveReport(ctx context.Context, report *modelMongo.SyncReport) {
	if s.reportRepo == nil {
		return
	}
	id, err := s.reportRepo.InsertReport(ctx, report)
	if err != nil {
		utils.LogError("save sync report: %v", err)
		return
	}
	report.ID = id
}

func (s *SyncService) SyncAll(c *fiber.Ctx) error {
	ctx := c.Context()
	students, err := s.studentRepo.GetAllStudents(ctx)
	if err != nil {
		return serverError(c, "failed to load students", err)
	}
	report := s.SyncStudents(ctx, students, modelMongo.SyncKindAll, true)
	return c.JSON(summarize(report))
}

func (s *SyncService) SyncStudent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	ctx := c.Context()
	student, err := s.studentRepo.GetStudentByID(ctx, id)
	if errors.Is(err, repoPg.ErrStudentNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}
	if err != nil {
		return serverError(c, "failed to load student", err)
	}

	report := s.SyncStudents(ctx, []models.Student{*student}, modelMongo.SyncKindStudent, false)
	return c.JSON(summarize(report))
}

// SyncProfilePhotos refreshes only the avatar of every student.
func (s *SyncService) SyncProfilePhotos(c *fiber.Ctx) error {
	ctx := c.Context()
	students, err := s.studentRepo.GetAllStudents(ctx)
	if err != nil {
		return serverError(c, "failed to load students", err)
	}

	report := &modelMongo.SyncReport{Kind: modelMongo.SyncKindProfilePhotos, StartedAt: s.now()}
	results := make([]modelMongo.SyncResult, len(students))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, st := range students {
		g.Go(func() error {
			res := modelMongo.SyncResult{StudentID: st.ID.String(), Username: st.LeetcodeUsername}
			profile, err := s.fetcher.FetchProfile(ctx, st.LeetcodeUsername)
			if err == nil && profile.AvatarURL != "" {
				err = s.studentRepo.UpdateProfilePhoto(ctx, st.ID, profile.AvatarURL)
			}
			if err != nil {
				res.Error = err.Error()
			} else {
				res.OK = true
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.OK {
			report.Success++
		} else {
			report.Failed++
		}
	}
	report.Results = results
	report.FinishedAt = s.now()
	s.saveReport(ctx, report)
	invalidate(ctx, s.cache)

	return c.JSON(summarize(report))
}
