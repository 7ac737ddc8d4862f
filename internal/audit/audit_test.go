package audit

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Log(t *testing.T) {
	tests := []struct {
		name          string
		event         Event
		wantEventType string
		wantSuccess   bool
		wantHasError  bool
	}{
		{
			name: "order created event",
			event: Event{
				ActorID:   uuid.New(),
				EventType: EventOrderCreated,
				TargetID:  "order-123",
				Success:   true,
			},
			wantEventType: string(EventOrderCreated),
			wantSuccess:   true,
		},
		{
			name: "failed user removal",
			event: Event{
				ActorID:   uuid.New(),
				EventType: EventUserRemoved,
				TargetID:  "user-456",
				Success:   false,
				Error:     "last admin",
			},
			wantEventType: string(EventUserRemoved),
			wantSuccess:   false,
			wantHasError:  true,
		},
		{
			name: "webhook tested with metadata",
			event: Event{
				ActorID:   uuid.New(),
				EventType: EventWebhookTested,
				Success:   true,
				Metadata: map[string]string{
					"status_code": "200",
				},
			},
			wantEventType: string(EventWebhookTested),
			wantSuccess:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

			err := logger.Log(context.Background(), tt.event)
			require.NoError(t, err)

			out := buf.String()
			assert.Contains(t, out, "audit_event")
			assert.Contains(t, out, tt.wantEventType)
			if tt.wantHasError {
				assert.Contains(t, out, tt.event.Error)
			}
		})
	}
}

func TestSlogLogger_FillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := logger.Log(context.Background(), Event{
		EventType: EventOrderDeleted,
		ActorID:   uuid.New(),
		Success:   true,
	})
	require.NoError(t, err)

	// An event id and timestamp must be present in the serialized event.
	assert.True(t, strings.Contains(buf.String(), `\"timestamp\"`) || strings.Contains(buf.String(), `"timestamp"`))
}

func TestNoOpLogger(t *testing.T) {
	logger := &NoOpLogger{}
	assert.NoError(t, logger.Log(context.Background(), Event{EventType: EventOrderCreated}))
}
