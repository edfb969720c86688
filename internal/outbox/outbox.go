// Package outbox implements the transactional outbox: events are written in
// the same transaction as the state change that produced them and a relay
// publishes them to Kafka afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one outbox row.
type Message struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	TenantID      string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// Key orders records per aggregate within a tenant.
func (m Message) Key() string {
	return m.TenantID + "/" + m.AggregateID
}

// Envelope is the JSON document consumers receive.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	TenantID   string          `json:"tenant_id"`
	MemberID   string          `json:"member_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewMessage wraps a domain event payload in an envelope.
func NewMessage(aggregateType, tenantID, aggregateID, eventType string, occurredAt time.Time, payload any) (Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	msgID := uuid.New()
	env, err := json.Marshal(Envelope{
		ID:         msgID.String(),
		Type:       eventType,
		TenantID:   tenantID,
		MemberID:   aggregateID,
		OccurredAt: occurredAt.UTC(),
		Payload:    body,
	})
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}
	return Message{
		ID:            msgID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		TenantID:      tenantID,
		EventType:     eventType,
		Payload:       env,
		CreatedAt:     occurredAt,
	}, nil
}

// PublishFunc delivers a batch. A non-nil error leaves the whole batch unpublished.
type PublishFunc func(ctx context.Context, msgs []Message) error

// Store is implemented by the in-memory and PostgreSQL outboxes.
type Store interface {
	Append(ctx context.Context, msgs ...Message) error
	// ProcessBatch hands up to limit unpublished messages, oldest first, to
	// publish and marks them published if it succeeds.
	ProcessBatch(ctx context.Context, limit int, publish PublishFunc) (int, error)
}
