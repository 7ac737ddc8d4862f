package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
)

// RequireAdmin gates a route group to admin accounts. Must be chained
// after Auth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := CurrentUser(c)
		if err != nil {
			return err
		}

		if !u.IsAdmin() {
			return domain.ErrForbidden
		}

		return c.Next()
	}
}
