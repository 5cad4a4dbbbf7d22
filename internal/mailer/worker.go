package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/metrics"
	"github.com/northfiber/fiberops-backend/pkg/outbox"
	"github.com/northfiber/fiberops-backend/pkg/outbox/idempotency"
)

const mailWorkerConsumer = "mail-worker"

type deliveryStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.MailMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

type relaySender interface {
	Send(ctx context.Context, mail OutboundMail) error
}

type dlqStore interface {
	Insert(ctx context.Context, entry models.OutboxDLQ) error
}

// Worker consumes mail events and delivers the welcome mail through the
// relay. Delivery failures land on the message row; only infrastructure
// errors nack.
type Worker struct {
	store        deliveryStore
	relay        relaySender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	dlq          dlqStore
	logg         *logger.Logger
	metrics      *metrics.OpsMetrics
	ccList       []string
	now          func() time.Time
}

// NewWorker builds the mail delivery worker.
func NewWorker(
	store deliveryStore,
	relay relaySender,
	subscription *pubsub.Subscriber,
	manager *idempotency.Manager,
	dlq dlqStore,
	logg *logger.Logger,
	opsMetrics *metrics.OpsMetrics,
	ccList []string,
) (*Worker, error) {
	if store == nil {
		return nil, fmt.Errorf("mail repository required")
	}
	if relay == nil {
		return nil, fmt.Errorf("relay client required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("mail subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if dlq == nil {
		return nil, fmt.Errorf("dlq repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Worker{
		store:        store,
		relay:        relay,
		subscription: subscription,
		idempotency:  manager,
		dlq:          dlq,
		logg:         logg,
		metrics:      opsMetrics,
		ccList:       ccList,
		now:          time.Now,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	return w.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := w.handle(ctx, msg.ID, msg.Attributes, msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (w *Worker) handle(ctx context.Context, messageID string, attributes map[string]string, data []byte) processResult {
	eventType := attributes["event_type"]
	fields := map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	}
	logCtx := w.logg.WithFields(ctx, fields)

	if eventType != string(enums.EventMailQueued) {
		w.logg.Info(logCtx, "skipping non-mail event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		w.logg.Error(logCtx, "failed to decode envelope", err)
		w.parkUndecodable(ctx, logCtx, eventType, data, err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		w.logg.Error(logCtx, "invalid event id", err)
		w.parkUndecodable(ctx, logCtx, eventType, data, err)
		return processResult{ack: true}
	}

	already, err := w.idempotency.CheckAndMarkProcessed(ctx, mailWorkerConsumer, eventID)
	if err != nil {
		w.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		w.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload outbox.MailQueuedData
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		w.logg.Error(logCtx, "failed to parse payload", err)
		_ = w.idempotency.Delete(ctx, mailWorkerConsumer, eventID)
		w.park(ctx, logCtx, eventID, eventType, data, err)
		return processResult{ack: true}
	}

	logCtx = w.logg.WithFields(logCtx, map[string]any{
		"mail_message_id": payload.MessageID.String(),
		"customer_id":     payload.CustomerID.String(),
	})

	if err := w.deliver(ctx, payload, logCtx); err != nil {
		w.logg.Error(logCtx, "mail delivery handling failed", err)
		_ = w.idempotency.Delete(ctx, mailWorkerConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

// deliver sends the mail and writes the outcome back to the row. A relay
// failure is an outcome, not an error: the row records it and the event acks.
func (w *Worker) deliver(ctx context.Context, payload outbox.MailQueuedData, logCtx context.Context) error {
	message, err := w.store.FindByID(ctx, payload.MessageID)
	if err != nil {
		return fmt.Errorf("loading mail message: %w", err)
	}
	if message.Sent {
		w.logg.Info(logCtx, "mail already delivered")
		return nil
	}

	html, err := RenderWelcome(message.CustomerName)
	if err != nil {
		return fmt.Errorf("rendering welcome template: %w", err)
	}

	mail := OutboundMail{
		To:      mergeRecipients(message.To, w.ccList),
		Subject: WelcomeSubject,
		HTML:    html,
	}

	if err := w.relay.Send(ctx, mail); err != nil {
		w.metrics.IncMail(metrics.OutcomeFailed)
		if markErr := w.store.MarkFailed(ctx, message.ID, err.Error()); markErr != nil {
			return fmt.Errorf("recording delivery failure: %w", markErr)
		}
		w.logg.Error(logCtx, "mail relay rejected message", err)
		return nil
	}

	if err := w.store.MarkSent(ctx, message.ID, w.now()); err != nil {
		return fmt.Errorf("recording delivery: %w", err)
	}
	w.metrics.IncMail(metrics.OutcomeSent)
	w.logg.Info(logCtx, "welcome mail delivered")
	return nil
}

func (w *Worker) parkUndecodable(ctx context.Context, logCtx context.Context, eventType string, data []byte, cause error) {
	// no usable event id in the payload; key the DLQ row by a fresh one
	w.park(ctx, logCtx, uuid.New(), eventType, data, cause)
}

func (w *Worker) park(ctx context.Context, logCtx context.Context, eventID uuid.UUID, eventType string, data []byte, cause error) {
	message := cause.Error()
	entry := models.OutboxDLQ{
		EventID:      eventID,
		EventType:    eventType,
		Payload:      json.RawMessage(data),
		ErrorMessage: &message,
	}
	if err := w.dlq.Insert(ctx, entry); err != nil {
		w.logg.Error(logCtx, "failed to park event on dlq", err)
		return
	}
	w.metrics.IncMail(metrics.OutcomeDLQ)
	w.logg.Warn(logCtx, "event parked on dlq")
}
