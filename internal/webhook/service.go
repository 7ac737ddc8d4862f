package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 10 * time.Second
	maxRetryDelay  = 30 * time.Second
)

// LogStore is the append-only sink for delivery attempts.
type LogStore interface {
	Append(ctx context.Context, log *Log) error
}

// Service delivers event payloads to subscriber endpoints. Delivery
// failures never propagate to the caller; every attempt is captured in
// a Log and retried per the config's retry budget.
type Service struct {
	logs    LogStore
	sched   *Scheduler
	client  *http.Client
	logger  *slog.Logger
	timeout time.Duration
	backoff func(attempt int) time.Duration
}

type Option func(*Service)

// WithTimeout overrides the per-attempt delivery timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
		s.client.Timeout = d
	}
}

// WithBackoff overrides the retry delay schedule.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(s *Service) {
		s.backoff = fn
	}
}

func NewService(logs LogStore, sched *Scheduler, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		logs:    logs,
		sched:   sched,
		logger:  logger,
		timeout: defaultTimeout,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		backoff: Backoff,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Backoff is the default retry delay: exponential starting at 1s, with
// up to 1s of jitter, capped at 30s.
func Backoff(attempt int) time.Duration {
	delay := time.Duration(1<<attempt)*time.Second + rand.N(time.Second)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// Deliver attempts one delivery of the payload to the config's URL and
// records the outcome. On failure it schedules a retry while the attempt
// index is below the config's retry budget, linking the retry's log back
// through RetryOf. The current attempt's log is returned immediately;
// the scheduled retry runs in the background.
func (s *Service) Deliver(ctx context.Context, cfg *Config, eventKind string, payload any, attempt int, retryOf *uuid.UUID) *Log {
	entry := &Log{
		ID:         uuid.New(),
		WebhookID:  cfg.ID,
		WebhookURL: cfg.URL,
		Event:      eventKind,
		RetryCount: attempt,
		RetryOf:    retryOf,
		Timestamp:  time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		entry.Message = fmt.Sprintf("encode payload: %v", err)
		s.append(ctx, entry)
		return entry
	}
	entry.Payload = string(body)

	if cfg.URL == "" {
		entry.Message = "webhook URL not configured"
		s.append(ctx, entry)
		return entry
	}

	s.attempt(ctx, cfg, entry, eventKind, body)
	s.append(ctx, entry)

	if !entry.Success {
		s.scheduleRetry(cfg, eventKind, payload, attempt, entry.ID)
	}

	return entry
}

func (s *Service) attempt(ctx context.Context, cfg *Config, entry *Log, eventKind string, body []byte) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		entry.Message = fmt.Sprintf("create request: %v", err)
		return
	}

	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	// Content-Type always wins over configured headers.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Compras-Event", eventKind)
	req.Header.Set("User-Agent", "Compras-Webhook/1.0")
	if cfg.Secret != "" {
		req.Header.Set("X-Compras-Signature", Sign(cfg.Secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			entry.Message = fmt.Sprintf("delivery timed out after %s", s.timeout)
		} else {
			entry.Message = fmt.Sprintf("network error: %v", err)
		}
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	code := resp.StatusCode
	entry.StatusCode = &code

	if code >= 400 {
		entry.Message = fmt.Sprintf("endpoint returned HTTP %d", code)
		return
	}

	entry.Success = true
	entry.Message = "delivered successfully"
}

func (s *Service) scheduleRetry(cfg *Config, eventKind string, payload any, attempt int, parentID uuid.UUID) {
	budget := cfg.MaxRetries
	if budget < 0 {
		budget = DefaultMaxRetries
	}
	if attempt >= budget {
		return
	}

	delay := s.backoff(attempt)
	retryOf := parentID
	retryCfg := *cfg

	s.sched.Schedule(cfg.ID, delay, func() {
		s.Deliver(context.Background(), &retryCfg, eventKind, payload, attempt+1, &retryOf)
	})

	s.logger.Info("webhook delivery scheduled for retry",
		"webhook_id", cfg.ID,
		"event", eventKind,
		"attempt", attempt+1,
		"delay", delay,
	)
}

// Broadcast fans the event out to every enabled config subscribed to the
// event kind. Deliveries run concurrently and independently; there is no
// ordering between subscribers and no aggregate result.
func (s *Service) Broadcast(ctx context.Context, eventKind string, payload any, configs []Config) {
	for i := range configs {
		cfg := configs[i]
		if !cfg.Enabled || !cfg.Subscribed(eventKind) {
			continue
		}
		go s.Deliver(context.WithoutCancel(ctx), &cfg, eventKind, payload, 0, nil)
	}
}

// Test sends a synthetic order-created payload with retries disabled,
// for interactive configuration verification.
func (s *Service) Test(ctx context.Context, cfg *Config) *Log {
	testCfg := *cfg
	testCfg.MaxRetries = 0

	payload := OrderCreatedEvent{
		Evento:       EventOrderCreated,
		PedidoID:     uuid.New().String(),
		Solicitante:  "Sistema",
		Item:         "Pedido de teste",
		Quantidade:   1,
		Status:       "pendente",
		Departamento: "TI",
		Motivo:       "Verificação de webhook",
		DataCriacao:  time.Now().UTC(),
		Teste:        true,
		Mensagem:     "Este é um envio de teste",
	}

	return s.Deliver(ctx, &testCfg, EventOrderCreated, payload, 0, nil)
}

// CancelRetries drops every retry still scheduled for the config.
// Called when a config is deleted or disabled.
func (s *Service) CancelRetries(configID uuid.UUID) {
	s.sched.Cancel(configID)
}

func (s *Service) append(ctx context.Context, entry *Log) {
	if err := s.logs.Append(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to append webhook log",
			"webhook_id", entry.WebhookID,
			"event", entry.Event,
			"error", err,
		)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
