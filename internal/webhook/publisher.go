package webhook

import (
	"context"
	"log/slog"
)

// ConfigStore loads the configs subscribed to an event kind.
type ConfigStore interface {
	ListByEvent(ctx context.Context, eventKind string) ([]Config, error)
}

// Publisher is the fire-and-forget bridge between business mutations and
// webhook fan-out. Publish never fails the operation that emitted the
// event; load errors are logged and swallowed.
type Publisher struct {
	service *Service
	configs ConfigStore
	logger  *slog.Logger
}

func NewPublisher(service *Service, configs ConfigStore, logger *slog.Logger) *Publisher {
	return &Publisher{
		service: service,
		configs: configs,
		logger:  logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, eventKind string, payload any) {
	configs, err := p.configs.ListByEvent(ctx, eventKind)
	if err != nil {
		p.logger.Error("failed to load webhook configs",
			"event", eventKind,
			"error", err,
		)
		return
	}

	if len(configs) == 0 {
		return
	}

	p.service.Broadcast(ctx, eventKind, payload, configs)
}
