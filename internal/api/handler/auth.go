package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/compras/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/user"
)

type AuthHandler struct {
	users  *user.Service
	logger *slog.Logger
}

func NewAuthHandler(users *user.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// Register creates a self-service account. The response carries the
// approval status so the client can tell the user they are waiting on
// an administrator.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	u, err := h.users.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.logger.Info("user registered",
		"user_id", u.ID,
		"status", u.Status,
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": u,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	u, token, err := h.users.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  u,
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": u,
	})
}

// ChangePassword replaces the authenticated account's credential.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	u, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	if err := h.users.ChangePassword(c.Context(), u.ID, req.Password); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
