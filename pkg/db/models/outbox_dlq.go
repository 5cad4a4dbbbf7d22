package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxDLQ parks events that exhausted their publish attempts or could not
// be decoded, keeping the main outbox table drainable.
type OutboxDLQ struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID      uuid.UUID       `gorm:"column:event_id;type:uuid;not null;uniqueIndex"`
	EventType    string          `gorm:"column:event_type;type:text;not null"`
	Payload      json.RawMessage `gorm:"column:payload;type:jsonb"`
	ErrorMessage *string         `gorm:"column:error_message;type:text"`
	FailedAt     time.Time       `gorm:"column:failed_at;autoCreateTime"`
}
