package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLogStore struct {
	mu      sync.Mutex
	entries []Log
}

func (m *memLogStore) Append(_ context.Context, log *Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *log)
	return nil
}

func (m *memLogStore) all() []Log {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Log, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *memLogStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastBackoff(int) time.Duration { return 5 * time.Millisecond }

func newTestService(store *memLogStore, opts ...Option) (*Service, *Scheduler) {
	sched := NewScheduler()
	opts = append([]Option{WithBackoff(fastBackoff)}, opts...)
	return NewService(store, sched, discardLogger(), opts...), sched
}

func waitForLogs(t *testing.T, store *memLogStore, n int) []Log {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if store.count() >= n {
			return store.all()
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d log entries, have %d", n, store.count())
	return nil
}

func TestDeliver_Success(t *testing.T) {
	var gotMethod, gotContentType, gotEvent string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotEvent = r.Header.Get("X-Compras-Event")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, _ := newTestService(store)

	cfg := &Config{ID: uuid.New(), URL: srv.URL, MaxRetries: 3}
	payload := map[string]string{"evento": EventOrderCreated}

	log := svc.Deliver(context.Background(), cfg, EventOrderCreated, payload, 0, nil)

	assert.True(t, log.Success)
	assert.Equal(t, "delivered successfully", log.Message)
	require.NotNil(t, log.StatusCode)
	assert.Equal(t, http.StatusOK, *log.StatusCode)
	assert.Equal(t, 0, log.RetryCount)
	assert.Nil(t, log.RetryOf)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, EventOrderCreated, gotEvent)
	assert.JSONEq(t, log.Payload, string(gotBody))

	assert.Equal(t, 1, store.count())
}

func TestDeliver_EmptyURL(t *testing.T) {
	store := &memLogStore{}
	svc, sched := newTestService(store)

	cfg := &Config{ID: uuid.New(), URL: "", MaxRetries: 3}

	log := svc.Deliver(context.Background(), cfg, EventOrderCreated, map[string]string{}, 0, nil)

	assert.False(t, log.Success)
	assert.Equal(t, "webhook URL not configured", log.Message)
	assert.Nil(t, log.StatusCode)
	assert.Equal(t, 1, store.count())
	assert.Equal(t, 0, sched.Pending(cfg.ID), "no retry may be scheduled without a URL")
}

func TestDeliver_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, _ := newTestService(store)

	cfg := &Config{ID: uuid.New(), URL: srv.URL, MaxRetries: 0}

	log := svc.Deliver(context.Background(), cfg, EventOrderCreated, map[string]string{}, 0, nil)

	assert.False(t, log.Success)
	assert.Equal(t, "endpoint returned HTTP 500", log.Message)
	require.NotNil(t, log.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, *log.StatusCode)
}

func TestDeliver_NetworkError(t *testing.T) {
	store := &memLogStore{}
	svc, _ := newTestService(store)

	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := &Config{ID: uuid.New(), URL: url, MaxRetries: 0}

	log := svc.Deliver(context.Background(), cfg, EventOrderCreated, map[string]string{}, 0, nil)

	assert.False(t, log.Success)
	assert.True(t, strings.HasPrefix(log.Message, "network error:"), "message = %q", log.Message)
	assert.Nil(t, log.StatusCode)
}

func TestDeliver_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, _ := newTestService(store, WithTimeout(20*time.Millisecond))

	cfg := &Config{ID: uuid.New(), URL: srv.URL, MaxRetries: 0}

	log := svc.Deliver(context.Background(), cfg, EventOrderCreated, map[string]string{}, 0, nil)

	assert.False(t, log.Success)
	assert.Contains(t, log.Message, "timed out")
}

func TestDeliver_RetryExhaustion(t *testing.T) {
	var attempts int
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, _ := newTestService(store)

	cfg := &Config{ID: uuid.New(), URL: srv.URL, MaxRetries: 2}

	first := svc.Deliver(context.Background(), cfg, EventOrderCreated, map[string]string{}, 0, nil)
	assert.False(t, first.Success)

	logs := waitForLogs(t, store, 3)

	// No 4th attempt may be scheduled once the budget is exhausted.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 3, store.count())

	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()

	for i, log := range logs {
		assert.Equal(t, i, log.RetryCount)
		assert.False(t, log.Success)
	}

	// Each retry links back to the attempt it retries.
	assert.Nil(t, logs[0].RetryOf)
	require.NotNil(t, logs[1].RetryOf)
	assert.Equal(t, logs[0].ID, *logs[1].RetryOf)
	require.NotNil(t, logs[2].RetryOf)
	assert.Equal(t, logs[1].ID, *logs[2].RetryOf)
}

func TestDeliver_ContentTypeNotOverridable(t *testing.T) {
	var gotContentType, gotToken string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotToken = r.Header.Get("X-Token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, _ := newTestService(store)

	cfg := &Config{
		ID:  uuid.New(),
		URL: srv.URL,
		Headers: map[string]string{
			"Content-Type": "text/plain",
			"X-Token":      "abc123",
		},
	}

	log := svc.Deliver(context.Background(), cfg, EventOrderCreated, map[string]string{}, 0, nil)

	assert.True(t, log.Success)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "abc123", gotToken)
}

func TestDeliver_Signature(t *testing.T) {
	var gotSignature string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Compras-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, _ := newTestService(store)

	cfg := &Config{ID: uuid.New(), URL: srv.URL, Secret: "s3cret"}

	log := svc.Deliver(context.Background(), cfg, EventOrderCreated, map[string]string{"a": "b"}, 0, nil)

	assert.True(t, log.Success)
	assert.NotEmpty(t, gotSignature)
	assert.True(t, Verify("s3cret", gotBody, gotSignature))
}

func TestBroadcast(t *testing.T) {
	received := make(chan string, 10)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Evento string `json:"evento"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- r.Header.Get("X-Subscriber")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, _ := newTestService(store)

	configs := []Config{
		{
			ID:      uuid.New(),
			URL:     srv.URL,
			Events:  []string{EventOrderCreated},
			Enabled: true,
			Headers: map[string]string{"X-Subscriber": "subscribed"},
		},
		{
			ID:      uuid.New(),
			URL:     srv.URL,
			Events:  []string{EventOrderCreated},
			Enabled: false,
			Headers: map[string]string{"X-Subscriber": "disabled"},
		},
		{
			ID:      uuid.New(),
			URL:     srv.URL,
			Events:  []string{EventAccountCreated},
			Enabled: true,
			Headers: map[string]string{"X-Subscriber": "other-event"},
		},
	}

	svc.Broadcast(context.Background(), EventOrderCreated, map[string]string{"evento": EventOrderCreated}, configs)

	select {
	case subscriber := <-received:
		assert.Equal(t, "subscribed", subscriber)
	case <-time.After(2 * time.Second):
		t.Fatal("subscribed config never received the event")
	}

	select {
	case subscriber := <-received:
		t.Fatalf("unexpected delivery to %q", subscriber)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTest_NeverRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, sched := newTestService(store)

	cfg := &Config{ID: uuid.New(), URL: srv.URL, MaxRetries: 5}

	log := svc.Test(context.Background(), cfg)

	assert.False(t, log.Success)
	assert.Equal(t, 0, log.RetryCount)
	assert.Contains(t, log.Payload, `"teste":true`)
	assert.Equal(t, 0, sched.Pending(cfg.ID), "test deliveries never retry")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, store.count())
}

func TestTest_PayloadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &memLogStore{}
	svc, _ := newTestService(store)

	cfg := &Config{ID: uuid.New(), URL: srv.URL}
	log := svc.Test(context.Background(), cfg)

	var payload OrderCreatedEvent
	require.NoError(t, json.Unmarshal([]byte(log.Payload), &payload))
	assert.Equal(t, EventOrderCreated, payload.Evento)
	assert.True(t, payload.Teste)
	assert.NotEmpty(t, payload.Mensagem)
}

func TestCancelRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := &memLogStore{}
	sched := NewScheduler()
	svc := NewService(store, sched, discardLogger(), WithBackoff(func(int) time.Duration {
		return 500 * time.Millisecond
	}))

	cfg := &Config{ID: uuid.New(), URL: srv.URL, MaxRetries: 3}

	svc.Deliver(context.Background(), cfg, EventOrderCreated, map[string]string{}, 0, nil)
	require.Equal(t, 1, sched.Pending(cfg.ID))

	svc.CancelRetries(cfg.ID)
	assert.Equal(t, 0, sched.Pending(cfg.ID))

	time.Sleep(700 * time.Millisecond)
	assert.Equal(t, 1, store.count(), "cancelled retry must not fire")
}
