package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxCompleted  OutboxStatus = "completed"
	OutboxFailed     OutboxStatus = "failed"
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// OutboxMessage is an event written in the same transaction as the change it describes.
type OutboxMessage struct {
	ID                 int64        `db:"id" json:"id"`
	AggregateType      string       `db:"aggregate_type" json:"aggregateType"`
	AggregateID        string       `db:"aggregate_id" json:"aggregateId"`
	EventType          string       `db:"event_type" json:"eventType"`
	Payload            []byte       `db:"payload" json:"payload"`
	CreatedAt          string       `db:"created_at" json:"createdAt"`
	ProcessedAt        *string      `db:"processed_at" json:"processedAt,omitempty"`
	ProcessingAttempts int          `db:"processing_attempts" json:"processingAttempts"`
	LastError          *string      `db:"last_error" json:"lastError,omitempty"`
	Status             OutboxStatus `db:"status" json:"status"`
	ClaimedAt          *string      `db:"claimed_at" json:"-"`
}

type OrderEvent struct {
	EventType  string `json:"eventType"`
	EventID    string `json:"eventId"`
	OccurredAt string `json:"occurredAt"`
	Order      *Order `json:"order"`
}

// NewOrderEvent wraps an order snapshot into a pending outbox message.
func NewOrderEvent(eventType string, o *Order, now time.Time) (*OutboxMessage, error) {
	ts := now.UTC().Format(TimeLayout)
	payload, err := json.Marshal(OrderEvent{
		EventType:  eventType,
		EventID:    uuid.NewString(),
		OccurredAt: ts,
		Order:      o,
	})
	if err != nil {
		return nil, err
	}
	return &OutboxMessage{
		AggregateType: "order",
		AggregateID:   o.OrderID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     ts,
		Status:        OutboxPending,
	}, nil
}
