package models

import (
	"time"

	"github.com/google/uuid"
)

// MailMessage is the enqueue contract with the mail worker: the API inserts
// a row with Sent=false and the worker writes back the delivery result.
type MailMessage struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	To           []string   `gorm:"column:to;type:jsonb;serializer:json" json:"to"`
	CustomerName string     `gorm:"column:customer_name;type:text;not null" json:"customerName"`
	Sent         bool       `gorm:"column:sent;not null;default:false" json:"sent"`
	SentAt       *time.Time `gorm:"column:sent_at" json:"sentAt,omitempty"`
	Error        *string    `gorm:"column:error;type:text" json:"error,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
