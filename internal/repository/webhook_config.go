package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
	"github.com/saturnino-fabrica-de-software/compras/internal/webhook"
)

type WebhookConfigRepository struct {
	pool PgxPool
}

func NewWebhookConfigRepository(pool PgxPool) *WebhookConfigRepository {
	return &WebhookConfigRepository{pool: pool}
}

// Save upserts the config. Events and headers travel as JSONB so the
// schema stays flat.
func (r *WebhookConfigRepository) Save(ctx context.Context, cfg *webhook.Config) error {
	query := `
		INSERT INTO webhook_configs (id, name, url, events, enabled, headers, secret, max_retries, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			events = EXCLUDED.events,
			enabled = EXCLUDED.enabled,
			headers = EXCLUDED.headers,
			secret = EXCLUDED.secret,
			max_retries = EXCLUDED.max_retries,
			updated_at = EXCLUDED.updated_at
	`

	events, err := json.Marshal(cfg.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	headers, err := json.Marshal(cfg.Headers)
	if err != nil {
		return fmt.Errorf("marshal headers: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		cfg.ID,
		cfg.Name,
		cfg.URL,
		events,
		cfg.Enabled,
		headers,
		cfg.Secret,
		cfg.MaxRetries,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("save webhook config: %w", err)
	}

	return nil
}

func (r *WebhookConfigRepository) GetByID(ctx context.Context, id uuid.UUID) (*webhook.Config, error) {
	query := `
		SELECT id, name, url, events, enabled, headers, secret, max_retries, created_at, updated_at
		FROM webhook_configs
		WHERE id = $1
	`

	cfg, err := scanConfig(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWebhookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get webhook config: %w", err)
	}

	return cfg, nil
}

func (r *WebhookConfigRepository) List(ctx context.Context) ([]webhook.Config, error) {
	query := `
		SELECT id, name, url, events, enabled, headers, secret, max_retries, created_at, updated_at
		FROM webhook_configs
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list webhook configs: %w", err)
	}
	defer rows.Close()

	return collectConfigs(rows)
}

// ListByEvent returns the enabled configs subscribed to the event kind.
// The jsonb ? operator matches string elements of the events array.
func (r *WebhookConfigRepository) ListByEvent(ctx context.Context, eventKind string) ([]webhook.Config, error) {
	query := `
		SELECT id, name, url, events, enabled, headers, secret, max_retries, created_at, updated_at
		FROM webhook_configs
		WHERE enabled = TRUE AND events ? $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, eventKind)
	if err != nil {
		return nil, fmt.Errorf("list webhook configs by event: %w", err)
	}
	defer rows.Close()

	return collectConfigs(rows)
}

// Delete is idempotent: removing an absent config is not an error.
func (r *WebhookConfigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM webhook_configs
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete webhook config: %w", err)
	}

	return nil
}

func scanConfig(row pgx.Row) (*webhook.Config, error) {
	var (
		cfg     webhook.Config
		events  []byte
		headers []byte
	)

	err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.URL,
		&events,
		&cfg.Enabled,
		&headers,
		&cfg.Secret,
		&cfg.MaxRetries,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(events, &cfg.Events); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &cfg.Headers); err != nil {
			return nil, fmt.Errorf("unmarshal headers: %w", err)
		}
	}

	return &cfg, nil
}

func collectConfigs(rows pgx.Rows) ([]webhook.Config, error) {
	var configs []webhook.Config
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook config: %w", err)
		}
		configs = append(configs, *cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return configs, nil
}
