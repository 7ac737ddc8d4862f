package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/user"
)

const (
	// LocalUser is the key to retrieve the authenticated user from context
	LocalUser = "current_user"
	// LocalUserID is the key to retrieve the authenticated user's ID from context
	LocalUserID = "user_id"
)

// UserLoader looks up the account behind a validated token. The token
// carries the role at issue time; the lookup catches accounts that were
// rejected or removed since.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AuthDependencies contains dependencies for session authentication
type AuthDependencies struct {
	Tokens *user.TokenService
	Users  UserLoader
	Logger *slog.Logger
}

// Auth creates an authentication middleware using Bearer session tokens.
func Auth(deps AuthDependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return domain.ErrUnauthorized
		}

		claims, err := deps.Tokens.Validate(token)
		if err != nil {
			deps.Logger.Debug("token validation failed", slog.Any("error", err))
			return domain.ErrUnauthorized
		}

		u, err := deps.Users.GetByID(c.Context(), claims.UserID)
		if err != nil {
			// Account removed since the token was issued.
			return domain.ErrUnauthorized
		}

		switch u.Status {
		case domain.UserPending:
			return domain.ErrPendingApproval
		case domain.UserRejected:
			return domain.ErrAccountRejected
		}

		c.Locals(LocalUserID, u.ID)
		c.Locals(LocalUser, u)

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// CurrentUser retrieves the authenticated user from Fiber context
func CurrentUser(c *fiber.Ctx) (*domain.User, error) {
	u, ok := c.Locals(LocalUser).(*domain.User)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

// CurrentUserID retrieves the authenticated user's ID from Fiber context
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(LocalUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}
