package service

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	models "student-progress-dashboard/app/models/postgresql"
	repoPg "student-progress-dashboard/app/repository/postgresql"
	"student-progress-dashboard/utils"
)

type AuthService struct {
	userRepo repoPg.UserRepository
}

func NewAuthService(userRepo repoPg.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

func (s *AuthService) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return badRequest(c, err)
	}

	user, err := s.userRepo.GetUserByUsername(c.Context(), req.Username)
	if errors.Is(err, repoPg.ErrUserNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}
	if err != nil {
		return serverError(c, "failed to load user", err)
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		return serverError(c, "failed to sign token", err)
	}
	refresh, err := utils.GenerateRefreshToken(user)
	if err != nil {
		return serverError(c, "failed to sign refresh token", err)
	}

	return c.JSON(fiber.Map{
		"token":        token,
		"refreshToken": refresh,
		"user":         user,
	})
}

func (s *AuthService) Refresh(c *fiber.Ctx) error {
	var req models.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return badRequest(c, err)
	}

	claims, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid refresh token"})
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid refresh token"})
	}

	// The account may have been removed since the refresh token was issued.
	user, err := s.userRepo.GetUserByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "user no longer exists"})
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		return serverError(c, "failed to sign token", err)
	}
	return c.JSON(fiber.Map{"token": token})
}

func (s *AuthService) Profile(c *fiber.Ctx) error {
	userID, err := getUserIDFromToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	user, err := s.userRepo.GetUserByID(c.Context(), userID)
	if errors.Is(err, repoPg.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	if err != nil {
		return serverError(c, "failed to load user", err)
	}
	return c.JSON(user)
}
