package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	repoRedis "student-progress-dashboard/app/repository/redis"
	"student-progress-dashboard/utils"
)

// Helper untuk ambil User ID dari c.Locals("user_id") yang diisi middleware.
func getUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	switch v := c.Locals("user_id").(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case nil:
		return uuid.Nil, errors.New("unauthorized: user_id missing in context")
	}
	return uuid.Nil, errors.New("user_id has an unexpected type")
}

// badRequest replies 400, with per-field messages for validation failures.
func badRequest(c *fiber.Ctx, err error) error {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Error(), "fields": verr.Fields})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func serverError(c *fiber.Ctx, msg string, err error) error {
	utils.LogError("%s: %v", msg, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// queryLimit parses a positive limit query parameter.
func queryLimit(c *fiber.Ctx, fallback, ceiling int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return fallback
	}
	return min(n, ceiling)
}

// respondCached serves key from cache, or builds, stores and sends it.
func respondCached(c *fiber.Ctx, cache repoRedis.DashboardCache, key string, build func(ctx context.Context) (any, error)) error {
	ctx := c.Context()

	var raw json.RawMessage
	if hit, err := cache.Get(ctx, key, &raw); err != nil {
		utils.LogError("cache get %s: %v", key, err)
	} else if hit {
		c.Set("X-Cache", "HIT")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(raw)
	}

	payload, err := build(ctx)
	if err != nil {
		return serverError(c, "failed to build "+key, err)
	}
	if err := cache.Set(ctx, key, payload); err != nil {
		utils.LogError("cache set %s: %v", key, err)
	}
	c.Set("X-Cache", "MISS")
	return c.JSON(payload)
}

// invalidate drops cached dashboards after a write.
func invalidate(ctx context.Context, cache repoRedis.DashboardCache) {
	if err := cache.Invalidate(ctx); err != nil {
		utils.LogError("cache invalidate: %v", err)
	}
}
