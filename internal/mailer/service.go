package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	pkgerrors "github.com/northfiber/fiberops-backend/pkg/errors"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/outbox"
	"github.com/northfiber/fiberops-backend/pkg/pagination"
)

type mailStore interface {
	Insert(tx *gorm.DB, message *models.MailMessage) error
	ListRecent(ctx context.Context, after *pagination.Cursor, limit int) ([]models.MailMessage, error)
}

type customerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	UpdateColumns(ctx context.Context, customer *models.Customer, columns []string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// EnqueueInput identifies the customer and where the welcome mail goes.
type EnqueueInput struct {
	CustomerID uuid.UUID        `json:"customerId" validate:"required"`
	Recipients []string         `json:"recipients" validate:"required,min=1"`
	Actor      *outbox.ActorRef `json:"-"`
}

// Page is one cursor page of the outbound mail log.
type Page struct {
	Items      []models.MailMessage `json:"items"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

// Service enqueues welcome mail for async delivery by the worker.
type Service interface {
	SendWelcome(ctx context.Context, input EnqueueInput) (*models.MailMessage, error)
	ListRecent(ctx context.Context, params pagination.Params) (*Page, error)
}

type service struct {
	mail      mailStore
	customers customerStore
	tx        txRunner
	events    eventEmitter
	logg      *logger.Logger
}

// NewService wires the enqueue path. The message row and its outbox event
// commit together; delivery itself happens in the worker.
func NewService(mail mailStore, customers customerStore, tx txRunner, events eventEmitter, logg *logger.Logger) (Service, error) {
	if mail == nil {
		return nil, fmt.Errorf("mail repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{mail: mail, customers: customers, tx: tx, events: events, logg: logg}, nil
}

func (s *service) SendWelcome(ctx context.Context, input EnqueueInput) (*models.MailMessage, error) {
	recipients, err := normalizeRecipients(input.Recipients)
	if err != nil {
		return nil, err
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	message := &models.MailMessage{
		ID:           uuid.New(),
		To:           recipients,
		CustomerName: customer.CustomerName,
		Sent:         false,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.mail.Insert(tx, message); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMailQueued,
			AggregateType: enums.AggregateMailMessage,
			AggregateID:   message.ID,
			Actor:         input.Actor,
			Data: outbox.MailQueuedData{
				MessageID:    message.ID,
				CustomerID:   customer.ID,
				CustomerName: customer.CustomerName,
				To:           recipients,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueue welcome mail")
	}

	// the checklist flag is set at enqueue time; a delivery failure shows up
	// on the message row, not here
	if !customer.PreInstallChecklist.WelcomeEmailSent {
		customer.PreInstallChecklist.WelcomeEmailSent = true
		if err := s.customers.UpdateColumns(ctx, customer, []string{"pre_install_checklist"}); err != nil && s.logg != nil {
			logCtx := s.logg.WithCustomerID(ctx, customer.ID.String())
			s.logg.Error(logCtx, "failed to flag welcome mail on checklist", err)
		}
	}

	return message, nil
}

// ListRecent pages the mail log newest-first. The repo fetches one row past
// the limit so the next cursor is only issued when more rows exist.
func (s *service) ListRecent(ctx context.Context, params pagination.Params) (*Page, error) {
	after, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.mail.ListRecent(ctx, after, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list mail messages")
	}

	page := &Page{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func normalizeRecipients(raw []string) ([]string, error) {
	recipients := mergeRecipients(nil, raw)
	if len(recipients) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one recipient is required")
	}
	for _, address := range recipients {
		if !strings.Contains(address, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid recipient %q", address))
		}
	}
	return recipients, nil
}

// mergeRecipients unions both lists, first occurrence wins, compared
// case-insensitively.
func mergeRecipients(base, extra []string) []string {
	seen := map[string]bool{}
	merged := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, address := range list {
			trimmed := strings.TrimSpace(address)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, trimmed)
		}
	}
	return merged
}
