package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/compras/internal/audit"
	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/webhook"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
	CountAdmins(ctx context.Context) (int, error)
}

// EventPublisher fans business events out to webhook subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, eventKind string, payload any)
}

type Service struct {
	repo   Repo
	events EventPublisher
	tokens *TokenService
	audit  audit.Logger
	logger *slog.Logger
}

func NewService(repo Repo, events EventPublisher, tokens *TokenService, auditLog audit.Logger, logger *slog.Logger) *Service {
	if auditLog == nil {
		auditLog = &audit.NoOpLogger{}
	}
	return &Service{
		repo:   repo,
		events: events,
		tokens: tokens,
		audit:  auditLog,
		logger: logger,
	}
}

func validateAccount(name, email, password string) error {
	if name == "" {
		return domain.NewValidationError("name", "must not be empty")
	}
	if email == "" {
		return domain.NewValidationError("email", "must not be empty")
	}
	if password == "" {
		return domain.NewValidationError("password", "must not be empty")
	}
	return nil
}

// Register creates a self-service account. The very first account becomes
// an approved admin; everyone after starts as a pending regular user.
func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if err := validateAccount(name, email, password); err != nil {
		return nil, err
	}

	email = domain.NormalizeEmail(email)

	if err := s.checkEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	role := domain.RoleUser
	status := domain.UserPending
	if total == 0 {
		role = domain.RoleAdmin
		status = domain.UserApproved
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Event{
		EventType: audit.EventUserRegistered,
		ActorID:   u.ID,
		TargetID:  u.ID.String(),
		Success:   true,
	})

	s.events.Publish(ctx, webhook.EventAccountCreated, webhook.NewAccountCreatedEvent(u))

	return u.Sanitized(), nil
}

// Add creates an account on behalf of an admin. Added accounts are
// approved immediately, regardless of how many users exist.
func (s *Service) Add(ctx context.Context, name, email, password string, role domain.Role, actorID uuid.UUID) (*domain.User, error) {
	if err := validateAccount(name, email, password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "must be admin or user")
	}

	email = domain.NormalizeEmail(email)

	if err := s.checkEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Event{
		EventType: audit.EventUserAdded,
		ActorID:   actorID,
		TargetID:  u.ID.String(),
		Success:   true,
	})

	s.events.Publish(ctx, webhook.EventAccountCreated, webhook.NewAccountCreatedEvent(u))

	return u.Sanitized(), nil
}

// Authenticate verifies credentials and returns the user with a session
// token. Accounts that are not approved cannot log in.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Do not reveal whether the email exists.
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !CheckPassword(u.PasswordHash, password) {
		return nil, "", domain.ErrInvalidCredentials
	}

	switch u.Status {
	case domain.UserPending:
		return nil, "", domain.ErrPendingApproval
	case domain.UserRejected:
		return nil, "", domain.ErrAccountRejected
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, "", domain.ErrInternal.WithError(err)
	}

	return u.Sanitized(), token, nil
}

// Approve marks the account approved. Approving an already-approved
// account is a no-op, not an error.
func (s *Service) Approve(ctx context.Context, id, actorID uuid.UUID) error {
	return s.setStatus(ctx, id, actorID, domain.UserApproved, audit.EventUserApproved)
}

// Reject marks the account rejected.
func (s *Service) Reject(ctx context.Context, id, actorID uuid.UUID) error {
	return s.setStatus(ctx, id, actorID, domain.UserRejected, audit.EventUserRejected)
}

func (s *Service) setStatus(ctx context.Context, id, actorID uuid.UUID, status domain.UserStatus, eventType audit.EventType) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	u.Status = status
	u.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Event{
		EventType: eventType,
		ActorID:   actorID,
		TargetID:  id.String(),
		Success:   true,
	})

	return nil
}

// Remove deletes an account. Users may never remove themselves, and the
// last remaining admin cannot be removed.
func (s *Service) Remove(ctx context.Context, id, actorID uuid.UUID) error {
	if id == actorID {
		return domain.ErrSelfRemoval
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if u.IsAdmin() {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return domain.ErrLastAdmin
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Event{
		EventType: audit.EventUserRemoved,
		ActorID:   actorID,
		TargetID:  id.String(),
		Success:   true,
	})

	return nil
}

// ChangePassword overwrites the stored credential with a fresh hash.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if newPassword == "" {
		return domain.NewValidationError("password", "must not be empty")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Event{
		EventType: audit.EventPasswordChanged,
		ActorID:   id,
		TargetID:  id.String(),
		Success:   true,
	})

	return nil
}

// List returns every account, sans credentials.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// GetByID returns one account, sans credentials.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

func (s *Service) checkEmailAvailable(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return domain.ErrEmailExists
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	return err
}
