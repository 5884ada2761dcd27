package service

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	models "student-progress-dashboard/app/models/postgresql"
	"student-progress-dashboard/app/progress"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	repoRedis "student-progress-dashboard/app/repository/redis"
)

type BadgeService struct {
	badgeRepo repoPg.BadgeRepository
	cache     repoRedis.DashboardCache
}

func NewBadgeService(badgeRepo repoPg.BadgeRepository, cache repoRedis.DashboardCache) *BadgeService {
	return &BadgeService{badgeRepo: badgeRepo, cache: cache}
}

type BadgeGroup struct {
	progress.BadgeInfo
	Count  int                       `json:"count"`
	Badges []models.BadgeWithStudent `json:"badges"`
}

type BadgeStats struct {
	TotalBadges  int                       `json:"totalBadges"`
	Recipients   int                       `json:"recipients"`
	MostPopular  *progress.BadgeInfo       `json:"mostPopular"`
	RecentBadges []models.BadgeWithStudent `json:"recentBadges"`
}

type BadgesPage struct {
	Badges []models.BadgeWithStudent `json:"badges"`
	Stats  BadgeStats                `json:"stats"`
	ByType []BadgeGroup              `json:"byType"`
}

// BuildBadgesPage groups awards, which must be ordered newest first.
func BuildBadgesPage(badges []models.BadgeWithStudent) BadgesPage {
	if badges == nil {
		badges = []models.BadgeWithStudent{}
	}
	page := BadgesPage{Badges: badges, ByType: make([]BadgeGroup, 0, len(progress.BadgeTypes()))}

	for i := range badges {
		if t, err := progress.ParseBadgeType(badges[i].BadgeType); err == nil {
			info := t.Info()
			badges[i].Title, badges[i].Description = info.Title, info.Description
		}
	}

	recipients := make(map[uuid.UUID]bool)
	byType := make(map[string][]models.BadgeWithStudent)
	for _, b := range badges {
		recipients[b.StudentID] = true
		byType[b.BadgeType] = append(byType[b.BadgeType], b)
	}

	best := 0
	for _, t := range progress.BadgeTypes() {
		group := byType[string(t)]
		if group == nil {
			group = []models.BadgeWithStudent{}
		}
		page.ByType = append(page.ByType, BadgeGroup{BadgeInfo: t.Info(), Count: len(group), Badges: group})
		if len(group) > best {
			best = len(group)
			info := t.Info()
			page.Stats.MostPopular = &info
		}
	}

	page.Stats.TotalBadges = len(badges)
	page.Stats.Recipients = len(recipients)
	page.Stats.RecentBadges = badges[:min(10, len(badges))]
	return page
}

func (s *BadgeService) GetAllBadges(c *fiber.Ctx) error {
	return respondCached(c, s.cache, "badges", func(ctx context.Context) (any, error) {
		badges, err := s.badgeRepo.GetAllBadges(ctx)
		if err != nil {
			return nil, err
		}
		return BuildBadgesPage(badges), nil
	})
}

// GetBadgeTypes lists the badge catalogue.
func (s *BadgeService) GetBadgeTypes(c *fiber.Ctx) error {
	types := progress.BadgeTypes()
	out := make([]progress.BadgeInfo, len(types))
	for i, t := range types {
		out[i] = t.Info()
	}
	return c.JSON(out)
}
