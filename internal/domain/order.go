package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a purchase order.
// Administrators may set any status at any time; there is no enforced
// linear progression between the three states.
type OrderStatus string

const (
	StatusPendente   OrderStatus = "pendente"
	StatusAguardando OrderStatus = "aguardando"
	StatusResolvido  OrderStatus = "resolvido"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendente, StatusAguardando, StatusResolvido:
		return true
	}
	return false
}

// Order is a purchase request submitted by a user.
// CreatedBy is immutable after creation.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Quantity      int         `json:"quantity"`
	Reason        string      `json:"reason"`
	Department    string      `json:"department"`
	Status        OrderStatus `json:"status"`
	ItemLink      string      `json:"item_link,omitempty"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	CreatedByName string      `json:"created_by_name"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Validate checks the order invariants and reports the first offending field.
func (o *Order) Validate() error {
	if o.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if o.Quantity <= 0 {
		return NewValidationError("quantity", "must be greater than zero")
	}
	if o.Reason == "" {
		return NewValidationError("reason", "must not be empty")
	}
	if o.Department == "" {
		return NewValidationError("department", "must not be empty")
	}
	if !o.Status.Valid() {
		return NewValidationError("status", "must be pendente, aguardando or resolvido")
	}
	return nil
}

// CanEdit reports whether the actor may mutate this order at all.
// Field-level restrictions are enforced by the order service.
func (o *Order) CanEdit(actor *User) bool {
	if actor == nil {
		return false
	}
	return actor.ID == o.CreatedBy || actor.IsAdmin()
}
