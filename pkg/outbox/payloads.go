package outbox

import (
	"github.com/google/uuid"

	"github.com/northfiber/fiberops-backend/pkg/enums"
)

// StageChangedData is the payload body for customer.stage_changed events.
type StageChangedData struct {
	CustomerID   uuid.UUID            `json:"customerId"`
	CustomerName string               `json:"customerName"`
	From         enums.CustomerStatus `json:"from"`
	To           enums.CustomerStatus `json:"to"`
}

// MailQueuedData is the payload body for mail.queued events. The worker
// loads the full message row by ID, so the payload stays small.
type MailQueuedData struct {
	MessageID    uuid.UUID `json:"messageId"`
	CustomerID   uuid.UUID `json:"customerId"`
	CustomerName string    `json:"customerName"`
	To           []string  `json:"to"`
}

// CustomerArchivedData is the payload body for customer.archived events.
type CustomerArchivedData struct {
	CustomerID   uuid.UUID `json:"customerId"`
	CustomerName string    `json:"customerName"`
}
