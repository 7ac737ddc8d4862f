package webhook

import (
	"time"

	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
)

// Event kinds carried on the wire in the "evento" field.
const (
	EventOrderCreated   = "pedido_criado"
	EventStatusUpdated  = "status_atualizado"
	EventOrderCancelled = "pedido_cancelado"
	EventAccountCreated = "conta_criada"
)

// EventKinds lists every event a config may subscribe to.
func EventKinds() []string {
	return []string{EventOrderCreated, EventStatusUpdated, EventOrderCancelled, EventAccountCreated}
}

func ValidEventKind(kind string) bool {
	for _, k := range EventKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

type OrderCreatedEvent struct {
	Evento       string    `json:"evento"`
	PedidoID     string    `json:"pedido_id"`
	Solicitante  string    `json:"solicitante"`
	Item         string    `json:"item"`
	Quantidade   int       `json:"quantidade"`
	Status       string    `json:"status"`
	Departamento string    `json:"departamento"`
	Motivo       string    `json:"motivo"`
	DataCriacao  time.Time `json:"data_criacao"`
	Teste        bool      `json:"teste,omitempty"`
	Mensagem     string    `json:"mensagem,omitempty"`
}

func NewOrderCreatedEvent(o *domain.Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		Evento:       EventOrderCreated,
		PedidoID:     o.ID.String(),
		Solicitante:  o.CreatedByName,
		Item:         o.Name,
		Quantidade:   o.Quantity,
		Status:       string(o.Status),
		Departamento: o.Department,
		Motivo:       o.Reason,
		DataCriacao:  o.CreatedAt,
	}
}

type StatusUpdatedEvent struct {
	Evento          string    `json:"evento"`
	PedidoID        string    `json:"pedido_id"`
	StatusAnterior  string    `json:"status_anterior"`
	StatusNovo      string    `json:"status_novo"`
	Solicitante     string    `json:"solicitante"`
	Item            string    `json:"item"`
	AtualizadoPor   string    `json:"atualizado_por"`
	DataAtualizacao time.Time `json:"data_atualizacao"`
}

func NewStatusUpdatedEvent(o *domain.Order, previous domain.OrderStatus, updatedBy string) StatusUpdatedEvent {
	return StatusUpdatedEvent{
		Evento:          EventStatusUpdated,
		PedidoID:        o.ID.String(),
		StatusAnterior:  string(previous),
		StatusNovo:      string(o.Status),
		Solicitante:     o.CreatedByName,
		Item:            o.Name,
		AtualizadoPor:   updatedBy,
		DataAtualizacao: o.UpdatedAt,
	}
}

type OrderCancelledEvent struct {
	Evento             string    `json:"evento"`
	PedidoID           string    `json:"pedido_id"`
	Solicitante        string    `json:"solicitante"`
	Item               string    `json:"item"`
	MotivoCancelamento string    `json:"motivo_cancelamento"`
	CanceladoPor       string    `json:"cancelado_por"`
	DataCancelamento   time.Time `json:"data_cancelamento"`
}

func NewOrderCancelledEvent(o *domain.Order, reason, cancelledBy string) OrderCancelledEvent {
	return OrderCancelledEvent{
		Evento:             EventOrderCancelled,
		PedidoID:           o.ID.String(),
		Solicitante:        o.CreatedByName,
		Item:               o.Name,
		MotivoCancelamento: reason,
		CanceladoPor:       cancelledBy,
		DataCancelamento:   time.Now().UTC(),
	}
}

type AccountCreatedEvent struct {
	Evento      string    `json:"evento"`
	UsuarioID   string    `json:"usuario_id"`
	Nome        string    `json:"nome"`
	Email       string    `json:"email"`
	Perfil      string    `json:"perfil"`
	DataCriacao time.Time `json:"data_criacao"`
}

func NewAccountCreatedEvent(u *domain.User) AccountCreatedEvent {
	return AccountCreatedEvent{
		Evento:      EventAccountCreated,
		UsuarioID:   u.ID.String(),
		Nome:        u.Name,
		Email:       u.Email,
		Perfil:      string(u.Role),
		DataCriacao: u.CreatedAt,
	}
}
