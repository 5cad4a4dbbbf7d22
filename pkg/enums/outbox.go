package enums

// OutboxEventType is the canonical event_type for domain event routing.
type OutboxEventType string

const (
	EventCustomerStageChanged OutboxEventType = "customer_stage_changed"
	EventCustomerArchived     OutboxEventType = "customer_archived"
	EventMailQueued           OutboxEventType = "mail_queued"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCustomerStageChanged,
	EventCustomerArchived,
	EventMailQueued,
}

// IsValid reports whether the value is a known outbox event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateCustomer    OutboxAggregateType = "customer"
	AggregateMailMessage OutboxAggregateType = "mail_message"
)

// OutboxStatus tracks publish progress of an outbox row.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
	OutboxStatusTerminal  OutboxStatus = "terminal"
)
