package domain

import (
	"context"
	"encoding/json"

	"salesdesk/internal/core/id"
)

// Event is a domain event written to the transactional outbox.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       json.RawMessage
}

// EventPublisher appends events inside the caller's transaction so that they
// commit or roll back together with the change that produced them.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
