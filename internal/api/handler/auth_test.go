package handler

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/compras/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/user"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrEmailExists
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUserRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *memUserRepo) CountAdmins(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, u := range r.users {
		if u.Role == domain.RoleAdmin {
			count++
		}
	}
	return count, nil
}

func newAuthApp(t *testing.T) (*fiber.App, *user.Service) {
	t.Helper()

	tokens := user.NewTokenService("test-secret", "compras-test", time.Hour)
	svc := user.NewService(newMemUserRepo(), noopPublisher{}, tokens, nil, testLogger())
	h := NewAuthHandler(svc, testLogger())

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)

	return app, svc
}

func TestAuthRegister_FirstUserIsAdmin(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, err := app.Test(jsonBody(t, "POST", "/auth/register", RegisterRequest{
		Name:     "Maria",
		Email:    "Maria@Example.com",
		Password: "s3cret",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		User domain.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, domain.RoleAdmin, body.User.Role)
	assert.Equal(t, domain.UserApproved, body.User.Status)
	assert.Equal(t, "maria@example.com", body.User.Email)
}

func TestAuthRegister_SecondUserPending(t *testing.T) {
	app, _ := newAuthApp(t)

	for _, email := range []string{"first@example.com", "second@example.com"} {
		resp, err := app.Test(jsonBody(t, "POST", "/auth/register", RegisterRequest{
			Name:     "x",
			Email:    email,
			Password: "s3cret",
		}))
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, err := app.Test(jsonBody(t, "POST", "/auth/login", LoginRequest{
		Email:    "second@example.com",
		Password: "s3cret",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "pending accounts cannot log in")
}

func TestAuthLogin(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, err := app.Test(jsonBody(t, "POST", "/auth/register", RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "s3cret",
	}))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(jsonBody(t, "POST", "/auth/login", LoginRequest{
		Email:    "maria@example.com",
		Password: "s3cret",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "maria@example.com", body.User.Email)
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, err := app.Test(jsonBody(t, "POST", "/auth/register", RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "s3cret",
	}))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(jsonBody(t, "POST", "/auth/login", LoginRequest{
		Email:    "maria@example.com",
		Password: "wrong",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthChangePassword(t *testing.T) {
	app, svc := newAuthApp(t)

	resp, err := app.Test(jsonBody(t, "POST", "/auth/register", RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "s3cret",
	}))
	require.NoError(t, err)

	var created struct {
		User domain.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	// Route registered behind a stub that injects the account, the way
	// the session middleware would.
	h := NewAuthHandler(svc, testLogger())
	app.Put("/auth/password", func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUser, &created.User)
		c.Locals(middleware.LocalUserID, created.User.ID)
		return h.ChangePassword(c)
	})

	resp, err = app.Test(jsonBody(t, "PUT", "/auth/password", ChangePasswordRequest{
		Password: "n3w-s3cret",
	}))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(jsonBody(t, "POST", "/auth/login", LoginRequest{
		Email:    "maria@example.com",
		Password: "n3w-s3cret",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
