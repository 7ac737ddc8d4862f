package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/compras/internal/webhook"
)

// logCap bounds the delivery log. Oldest entries by insertion order are
// dropped once the table exceeds it.
const logCap = 100

type WebhookLogRepository struct {
	pool PgxPool
}

func NewWebhookLogRepository(pool PgxPool) *WebhookLogRepository {
	return &WebhookLogRepository{pool: pool}
}

// Append inserts the entry and trims the table back to the cap. The trim
// keys on the monotonic seq column, so "oldest" means insertion order
// even when timestamps collide.
func (r *WebhookLogRepository) Append(ctx context.Context, entry *webhook.Log) error {
	insert := `
		INSERT INTO webhook_logs (id, webhook_id, webhook_url, event, payload, success, status_code, message, retry_count, retry_of, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, insert,
		entry.ID,
		entry.WebhookID,
		entry.WebhookURL,
		entry.Event,
		entry.Payload,
		entry.Success,
		entry.StatusCode,
		entry.Message,
		entry.RetryCount,
		entry.RetryOf,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append webhook log: %w", err)
	}

	trim := `
		DELETE FROM webhook_logs
		WHERE seq NOT IN (
			SELECT seq FROM webhook_logs
			ORDER BY seq DESC
			LIMIT $1
		)
	`

	if _, err := r.pool.Exec(ctx, trim, logCap); err != nil {
		return fmt.Errorf("trim webhook log: %w", err)
	}

	return nil
}

// List returns log entries newest-first, optionally filtered by config.
func (r *WebhookLogRepository) List(ctx context.Context, webhookID *uuid.UUID) ([]webhook.Log, error) {
	query := `
		SELECT id, webhook_id, webhook_url, event, payload, success, status_code, message, retry_count, retry_of, created_at
		FROM webhook_logs
	`
	args := []any{}
	if webhookID != nil {
		query += ` WHERE webhook_id = $1`
		args = append(args, *webhookID)
	}
	query += ` ORDER BY seq DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list webhook logs: %w", err)
	}
	defer rows.Close()

	var logs []webhook.Log
	for rows.Next() {
		var entry webhook.Log
		err := rows.Scan(
			&entry.ID,
			&entry.WebhookID,
			&entry.WebhookURL,
			&entry.Event,
			&entry.Payload,
			&entry.Success,
			&entry.StatusCode,
			&entry.Message,
			&entry.RetryCount,
			&entry.RetryOf,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan webhook log: %w", err)
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return logs, nil
}
