package middleware

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
	}{
		{
			name:       "admin passes",
			user:       &domain.User{ID: uuid.New(), Role: domain.RoleAdmin},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "regular user forbidden",
			user:       &domain.User{ID: uuid.New(), Role: domain.RoleUser},
			wantStatus: fiber.StatusForbidden,
		},
		{
			name:       "no user in context",
			user:       nil,
			wantStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})

			app.Use(func(c *fiber.Ctx) error {
				if tt.user != nil {
					c.Locals(LocalUser, tt.user)
				}
				return c.Next()
			})
			app.Use(RequireAdmin())
			app.Get("/admin-only", func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/admin-only", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
