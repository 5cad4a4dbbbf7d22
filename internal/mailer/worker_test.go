package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/outbox"
	"github.com/northfiber/fiberops-backend/pkg/outbox/idempotency"
)

type stubDeliveryStore struct {
	messages map[uuid.UUID]*models.MailMessage
	sent     []uuid.UUID
	failed   map[uuid.UUID]string
}

func newStubDeliveryStore(rows ...*models.MailMessage) *stubDeliveryStore {
	store := &stubDeliveryStore{
		messages: map[uuid.UUID]*models.MailMessage{},
		failed:   map[uuid.UUID]string{},
	}
	for _, row := range rows {
		store.messages[row.ID] = row
	}
	return store
}

func (s *stubDeliveryStore) FindByID(_ context.Context, id uuid.UUID) (*models.MailMessage, error) {
	message, ok := s.messages[id]
	if !ok {
		return nil, errors.New("message not found")
	}
	clone := *message
	return &clone, nil
}

func (s *stubDeliveryStore) MarkSent(_ context.Context, id uuid.UUID, _ time.Time) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *stubDeliveryStore) MarkFailed(_ context.Context, id uuid.UUID, message string) error {
	s.failed[id] = message
	return nil
}

type stubRelay struct {
	mails []OutboundMail
	err   error
}

func (s *stubRelay) Send(_ context.Context, mail OutboundMail) error {
	s.mails = append(s.mails, mail)
	return s.err
}

type stubDLQ struct {
	entries []models.OutboxDLQ
}

func (s *stubDLQ) Insert(_ context.Context, entry models.OutboxDLQ) error {
	s.entries = append(s.entries, entry)
	return nil
}

type fakeIdemStore struct {
	seen map[string]bool
}

func (f *fakeIdemStore) Get(context.Context, string) (string, error) { return "", nil }

func (f *fakeIdemStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeIdemStore) IdempotencyKey(scope, id string) string {
	return "fo:idempotency:" + scope + ":" + id
}

func (f *fakeIdemStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.seen, key)
	}
	return nil
}

func newTestWorker(t *testing.T, store deliveryStore, relay relaySender, dlq dlqStore) *Worker {
	t.Helper()
	manager, err := idempotency.NewManager(&fakeIdemStore{}, time.Hour)
	require.NoError(t, err)
	return &Worker{
		store:       store,
		relay:       relay,
		idempotency: manager,
		dlq:         dlq,
		logg:        logger.New(logger.Options{Output: io.Discard}),
		ccList:      []string{"office@northfiber.net"},
		now:         func() time.Time { return time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC) },
	}
}

func mailEvent(t *testing.T, payload outbox.MailQueuedData) (map[string]string, []byte) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       body,
	})
	require.NoError(t, err)
	return map[string]string{"event_type": string(enums.EventMailQueued)}, envelope
}

func TestWorkerDeliversAndRecordsSent(t *testing.T) {
	message := &models.MailMessage{
		ID:           uuid.New(),
		To:           []string{"mark@example.com"},
		CustomerName: "Harrison Mark",
	}
	store := newStubDeliveryStore(message)
	relay := &stubRelay{}
	worker := newTestWorker(t, store, relay, &stubDLQ{})

	attrs, data := mailEvent(t, outbox.MailQueuedData{MessageID: message.ID, CustomerID: uuid.New()})
	result := worker.handle(context.Background(), "m1", attrs, data)

	assert.True(t, result.ack)
	assert.False(t, result.nack)
	require.Len(t, relay.mails, 1)
	assert.Equal(t, []string{"mark@example.com", "office@northfiber.net"}, relay.mails[0].To)
	assert.Equal(t, WelcomeSubject, relay.mails[0].Subject)
	assert.Contains(t, relay.mails[0].HTML, "Harrison Mark")
	assert.Equal(t, []uuid.UUID{message.ID}, store.sent)
}

func TestWorkerRelayFailureLandsOnRow(t *testing.T) {
	message := &models.MailMessage{ID: uuid.New(), To: []string{"mark@example.com"}}
	store := newStubDeliveryStore(message)
	relay := &stubRelay{err: errors.New("relay returned 502")}
	worker := newTestWorker(t, store, relay, &stubDLQ{})

	attrs, data := mailEvent(t, outbox.MailQueuedData{MessageID: message.ID})
	result := worker.handle(context.Background(), "m1", attrs, data)

	// the failure is recorded, not retried through the broker
	assert.True(t, result.ack)
	assert.Empty(t, store.sent)
	assert.Equal(t, "relay returned 502", store.failed[message.ID])
}

func TestWorkerSkipsForeignEvents(t *testing.T) {
	relay := &stubRelay{}
	worker := newTestWorker(t, newStubDeliveryStore(), relay, &stubDLQ{})

	result := worker.handle(context.Background(), "m1",
		map[string]string{"event_type": string(enums.EventCustomerStageChanged)}, []byte("{}"))

	assert.True(t, result.ack)
	assert.Empty(t, relay.mails)
}

func TestWorkerDuplicateEventDeliversOnce(t *testing.T) {
	message := &models.MailMessage{ID: uuid.New(), To: []string{"mark@example.com"}}
	store := newStubDeliveryStore(message)
	relay := &stubRelay{}
	worker := newTestWorker(t, store, relay, &stubDLQ{})

	attrs, data := mailEvent(t, outbox.MailQueuedData{MessageID: message.ID})
	first := worker.handle(context.Background(), "m1", attrs, data)
	second := worker.handle(context.Background(), "m1", attrs, data)

	assert.True(t, first.ack)
	assert.True(t, second.ack)
	assert.Len(t, relay.mails, 1)
}

func TestWorkerParksUndecodableEvents(t *testing.T) {
	dlq := &stubDLQ{}
	worker := newTestWorker(t, newStubDeliveryStore(), &stubRelay{}, dlq)

	attrs := map[string]string{"event_type": string(enums.EventMailQueued)}
	result := worker.handle(context.Background(), "m1", attrs, []byte("not json"))

	assert.True(t, result.ack)
	require.Len(t, dlq.entries, 1)
	assert.Equal(t, string(enums.EventMailQueued), dlq.entries[0].EventType)
	require.NotNil(t, dlq.entries[0].ErrorMessage)
}

func TestWorkerAlreadySentMessageIsNoOp(t *testing.T) {
	message := &models.MailMessage{ID: uuid.New(), Sent: true}
	store := newStubDeliveryStore(message)
	relay := &stubRelay{}
	worker := newTestWorker(t, store, relay, &stubDLQ{})

	attrs, data := mailEvent(t, outbox.MailQueuedData{MessageID: message.ID})
	result := worker.handle(context.Background(), "m1", attrs, data)

	assert.True(t, result.ack)
	assert.Empty(t, relay.mails)
	assert.Empty(t, store.sent)
}

func TestRenderWelcomeEscapesName(t *testing.T) {
	html, err := RenderWelcome("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
