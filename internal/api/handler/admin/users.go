package admin

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/compras/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/user"
)

type UsersHandler struct {
	users  *user.Service
	logger *slog.Logger
}

func NewUsersHandler(users *user.Service, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		users:  users,
		logger: logger,
	}
}

type AddUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users": users,
	})
}

// Add creates an account on behalf of the admin. Unlike self-service
// registration, the account is approved immediately.
func (h *UsersHandler) Add(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleUser
	}

	u, err := h.users.Add(c.Context(), req.Name, req.Email, req.Password, role, actor.ID)
	if err != nil {
		return err
	}

	h.logger.Info("user added by admin",
		"user_id", u.ID,
		"role", u.Role,
		"added_by", actor.ID,
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": u,
	})
}

func (h *UsersHandler) Approve(c *fiber.Ctx) error {
	return h.setStatus(c, h.users.Approve, "user approved")
}

func (h *UsersHandler) Reject(c *fiber.Ctx) error {
	return h.setStatus(c, h.users.Reject, "user rejected")
}

func (h *UsersHandler) setStatus(c *fiber.Ctx, apply func(ctx context.Context, id, actorID uuid.UUID) error, msg string) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	if err := apply(c.Context(), id, actor.ID); err != nil {
		return err
	}

	h.logger.Info(msg,
		"user_id", id,
		"actor", actor.ID,
	)

	u, err := h.users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": u,
	})
}

type SetPasswordRequest struct {
	Password string `json:"password"`
}

// SetPassword resets another account's credential, for recovery.
func (h *UsersHandler) SetPassword(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	var req SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	if err := h.users.ChangePassword(c.Context(), id, req.Password); err != nil {
		return err
	}

	h.logger.Info("user password reset",
		"user_id", id,
		"reset_by", actor.ID,
	)

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UsersHandler) Remove(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	if err := h.users.Remove(c.Context(), id, actor.ID); err != nil {
		return err
	}

	h.logger.Info("user removed",
		"user_id", id,
		"removed_by", actor.ID,
	)

	return c.SendStatus(fiber.StatusNoContent)
}
