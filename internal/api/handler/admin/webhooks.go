package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/compras/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/compras/internal/audit"
	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/webhook"
)

// ConfigStore is the persistence surface for webhook configurations.
type ConfigStore interface {
	Save(ctx context.Context, cfg *webhook.Config) error
	GetByID(ctx context.Context, id uuid.UUID) (*webhook.Config, error)
	List(ctx context.Context) ([]webhook.Config, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LogStore reads the delivery log.
type LogStore interface {
	List(ctx context.Context, webhookID *uuid.UUID) ([]webhook.Log, error)
}

type WebhooksHandler struct {
	configs  ConfigStore
	logs     LogStore
	delivery *webhook.Service
	audit    audit.Logger
	logger   *slog.Logger
}

func NewWebhooksHandler(configs ConfigStore, logs LogStore, delivery *webhook.Service, auditLog audit.Logger, logger *slog.Logger) *WebhooksHandler {
	if auditLog == nil {
		auditLog = &audit.NoOpLogger{}
	}
	return &WebhooksHandler{
		configs:  configs,
		logs:     logs,
		delivery: delivery,
		audit:    auditLog,
		logger:   logger,
	}
}

type WebhookRequest struct {
	Name       string            `json:"name"`
	URL        string            `json:"url"`
	Events     []string          `json:"events"`
	Enabled    *bool             `json:"enabled"`
	Headers    map[string]string `json:"headers"`
	Secret     *string           `json:"secret"`
	MaxRetries *int              `json:"max_retries"`
}

func (r *WebhookRequest) validate() error {
	if r.Name == "" {
		return domain.NewValidationError("name", "must not be empty")
	}
	if r.URL == "" {
		return domain.NewValidationError("url", "must not be empty")
	}
	if len(r.Events) == 0 {
		return domain.NewValidationError("events", "must subscribe to at least one event")
	}
	for _, e := range r.Events {
		if !webhook.ValidEventKind(e) {
			return domain.NewValidationError("events", fmt.Sprintf("unknown event kind %q", e))
		}
	}
	if r.MaxRetries != nil && *r.MaxRetries < 0 {
		return domain.NewValidationError("max_retries", "must not be negative")
	}
	return nil
}

func (h *WebhooksHandler) List(c *fiber.Ctx) error {
	configs, err := h.configs.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"webhooks": configs,
	})
}

// Create registers a new subscription. When no secret is supplied one is
// generated and returned once; it is never readable again.
func (h *WebhooksHandler) Create(c *fiber.Ctx) error {
	var req WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}
	if err := req.validate(); err != nil {
		return err
	}

	secret := ""
	if req.Secret != nil {
		secret = *req.Secret
	} else {
		generated, err := generateSecret(32)
		if err != nil {
			return domain.ErrInternal.WithError(err)
		}
		secret = generated
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	maxRetries := webhook.DefaultMaxRetries
	if req.MaxRetries != nil {
		maxRetries = *req.MaxRetries
	}

	now := time.Now().UTC()
	cfg := &webhook.Config{
		ID:         uuid.New(),
		Name:       req.Name,
		URL:        req.URL,
		Events:     req.Events,
		Enabled:    enabled,
		Headers:    req.Headers,
		Secret:     secret,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.configs.Save(c.Context(), cfg); err != nil {
		return err
	}

	h.logger.Info("webhook created",
		"webhook_id", cfg.ID,
		"name", cfg.Name,
		"events", cfg.Events,
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"webhook": cfg,
		"secret":  secret,
	})
}

// Update replaces the subscription. Disabling cancels any retries still
// scheduled against it.
func (h *WebhooksHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	var req WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}
	if err := req.validate(); err != nil {
		return err
	}

	cfg, err := h.configs.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	cfg.Name = req.Name
	cfg.URL = req.URL
	cfg.Events = req.Events
	cfg.Headers = req.Headers
	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.Secret != nil {
		cfg.Secret = *req.Secret
	}
	if req.MaxRetries != nil {
		cfg.MaxRetries = *req.MaxRetries
	}
	cfg.UpdatedAt = time.Now().UTC()

	if err := h.configs.Save(c.Context(), cfg); err != nil {
		return err
	}

	if !cfg.Enabled {
		h.delivery.CancelRetries(cfg.ID)
	}

	return c.JSON(fiber.Map{
		"webhook": cfg,
	})
}

// Delete removes the subscription and drops its pending retries.
func (h *WebhooksHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	h.delivery.CancelRetries(id)

	if err := h.configs.Delete(c.Context(), id); err != nil {
		return err
	}

	h.logger.Info("webhook deleted", "webhook_id", id)

	return c.SendStatus(fiber.StatusNoContent)
}

// Test fires a synthetic payload at the endpoint and returns the
// resulting log entry. Test deliveries never retry.
func (h *WebhooksHandler) Test(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	cfg, err := h.configs.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	entry := h.delivery.Test(c.Context(), cfg)

	if actor, err := middleware.CurrentUser(c); err == nil {
		_ = h.audit.Log(c.Context(), audit.Event{
			EventType: audit.EventWebhookTested,
			ActorID:   actor.ID,
			TargetID:  cfg.ID.String(),
			Success:   entry.Success,
		})
	}

	return c.JSON(fiber.Map{
		"log": entry,
	})
}

// Logs returns delivery history, optionally filtered by ?webhook_id=.
func (h *WebhooksHandler) Logs(c *fiber.Ctx) error {
	var webhookID *uuid.UUID
	if q := c.Query("webhook_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			return domain.ErrBadRequest
		}
		webhookID = &id
	}

	logs, err := h.logs.List(c.Context(), webhookID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"logs": logs,
	})
}

func generateSecret(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
