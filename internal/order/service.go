package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/compras/internal/audit"
	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/webhook"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByStatus(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error)
}

// EventPublisher fans business events out to webhook subscribers.
// Publishing never fails the business operation.
type EventPublisher interface {
	Publish(ctx context.Context, eventKind string, payload any)
}

type Service struct {
	repo   Repo
	events EventPublisher
	audit  audit.Logger
	logger *slog.Logger
}

func NewService(repo Repo, events EventPublisher, auditLog audit.Logger, logger *slog.Logger) *Service {
	if auditLog == nil {
		auditLog = &audit.NoOpLogger{}
	}
	return &Service{
		repo:   repo,
		events: events,
		audit:  auditLog,
		logger: logger,
	}
}

type CreateInput struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason"`
	Department string `json:"department"`
	ItemLink   string `json:"item_link"`
}

// Create registers a new purchase order owned by the acting user.
// New orders always start as pendente.
func (s *Service) Create(ctx context.Context, in CreateInput, actor *domain.User) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            uuid.New(),
		Name:          in.Name,
		Quantity:      in.Quantity,
		Reason:        in.Reason,
		Department:    in.Department,
		Status:        domain.StatusPendente,
		ItemLink:      in.ItemLink,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Event{
		EventType: audit.EventOrderCreated,
		ActorID:   actor.ID,
		TargetID:  order.ID.String(),
		Success:   true,
	})

	s.events.Publish(ctx, webhook.EventOrderCreated, webhook.NewOrderCreatedEvent(order))

	return order, nil
}

type UpdateInput struct {
	Name       *string             `json:"name"`
	Quantity   *int                `json:"quantity"`
	Reason     *string             `json:"reason"`
	Department *string             `json:"department"`
	ItemLink   *string             `json:"item_link"`
	Status     *domain.OrderStatus `json:"status"`
}

// touchesNonStatus reports whether any field other than status is being changed.
func (in UpdateInput) touchesNonStatus() bool {
	return in.Name != nil || in.Quantity != nil || in.Reason != nil ||
		in.Department != nil || in.ItemLink != nil
}

// Update mutates an order. Only the owner or an admin may update; once an
// order leaves pendente, non-admins may only change its status.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, actor *domain.User) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.CanEdit(actor) {
		return nil, domain.ErrForbidden
	}

	if order.Status != domain.StatusPendente && !actor.IsAdmin() && in.touchesNonStatus() {
		return nil, domain.ErrOnlyPendingEditable
	}

	previousStatus := order.Status

	if in.Name != nil {
		order.Name = *in.Name
	}
	if in.Quantity != nil {
		order.Quantity = *in.Quantity
	}
	if in.Reason != nil {
		order.Reason = *in.Reason
	}
	if in.Department != nil {
		order.Department = *in.Department
	}
	if in.ItemLink != nil {
		order.ItemLink = *in.ItemLink
	}
	if in.Status != nil {
		order.Status = *in.Status
	}
	order.UpdatedAt = time.Now().UTC()

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Event{
		EventType: audit.EventOrderUpdated,
		ActorID:   actor.ID,
		TargetID:  order.ID.String(),
		Success:   true,
	})

	if order.Status != previousStatus {
		s.events.Publish(ctx, webhook.EventStatusUpdated,
			webhook.NewStatusUpdatedEvent(order, previousStatus, actor.Name))
	}

	return order, nil
}

// Delete removes an order. Owners may only delete while the order is still
// pendente; admins may delete regardless of status.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !order.CanEdit(actor) {
		return domain.ErrForbidden
	}

	if order.Status != domain.StatusPendente && !actor.IsAdmin() {
		return domain.ErrOnlyPendingDeletable
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Event{
		EventType: audit.EventOrderDeleted,
		ActorID:   actor.ID,
		TargetID:  order.ID.String(),
		Success:   true,
	})

	s.events.Publish(ctx, webhook.EventOrderCancelled,
		webhook.NewOrderCancelledEvent(order, order.Reason, actor.Name))

	return nil
}

// GetByID is a pure read; visibility filtering is a presentation concern.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByStatus returns orders filtered by status, or all orders when nil.
func (s *Service) ListByStatus(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	if status != nil && !status.Valid() {
		return nil, domain.NewValidationError("status", "must be pendente, aguardando or resolvido")
	}
	return s.repo.ListByStatus(ctx, status)
}
