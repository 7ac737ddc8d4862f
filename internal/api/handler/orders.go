package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/compras/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/order"
)

type OrdersHandler struct {
	orders *order.Service
	logger *slog.Logger
}

func NewOrdersHandler(orders *order.Service, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders: orders,
		logger: logger,
	}
}

// List returns all orders, optionally filtered by ?status=.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	var status *domain.OrderStatus
	if q := c.Query("status"); q != "" {
		s := domain.OrderStatus(q)
		status = &s
	}

	orders, err := h.orders.ListByStatus(c.Context(), status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"orders": orders,
	})
}

func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	o, err := h.orders.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"order": o,
	})
}

func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var in order.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return domain.ErrBadRequest
	}

	o, err := h.orders.Create(c.Context(), in, actor)
	if err != nil {
		return err
	}

	h.logger.Info("order created",
		"order_id", o.ID,
		"created_by", actor.ID,
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order": o,
	})
}

func (h *OrdersHandler) Update(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	var in order.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return domain.ErrBadRequest
	}

	o, err := h.orders.Update(c.Context(), id, in, actor)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"order": o,
	})
}

func (h *OrdersHandler) Delete(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	if err := h.orders.Delete(c.Context(), id, actor); err != nil {
		return err
	}

	h.logger.Info("order deleted",
		"order_id", id,
		"deleted_by", actor.ID,
	)

	return c.SendStatus(fiber.StatusNoContent)
}
