package webhook

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxRetries is the retry budget applied when a config is saved
// without one.
const DefaultMaxRetries = 3

// Config is a webhook subscription. Delivery is only attempted when the
// config is enabled and the event kind is in Events.
type Config struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	URL        string            `json:"url"`
	Events     []string          `json:"events"`
	Enabled    bool              `json:"enabled"`
	Headers    map[string]string `json:"headers,omitempty"`
	Secret     string            `json:"-"`
	MaxRetries int               `json:"max_retries"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Subscribed reports whether the config listens to the given event kind.
func (c *Config) Subscribed(eventKind string) bool {
	for _, e := range c.Events {
		if e == eventKind {
			return true
		}
	}
	return false
}

// Log records a single delivery attempt. Entries are append-only; the
// store keeps only the 100 most recently inserted.
type Log struct {
	ID         uuid.UUID  `json:"id"`
	WebhookID  uuid.UUID  `json:"webhook_id"`
	WebhookURL string     `json:"webhook_url"`
	Event      string     `json:"event"`
	Payload    string     `json:"payload"`
	Success    bool       `json:"success"`
	StatusCode *int       `json:"status_code,omitempty"`
	Message    string     `json:"message"`
	RetryCount int        `json:"retry_count"`
	RetryOf    *uuid.UUID `json:"retry_of,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
