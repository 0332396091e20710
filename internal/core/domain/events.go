package domain

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced = "OrderPlaced"

	TopicOrderPlaced = "flashmart.order.placed"
)

// EventEnvelope wraps every published event. Payload holds the event-specific
// body as raw JSON.
type EventEnvelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// OrderPlacedEvent is emitted after a checkout transaction commits. Consumers
// (analytics, reporting) read these instead of querying the OLTP tables.
type OrderPlacedEvent struct {
	OrderID    int64      `json:"order_id"`
	BuyerID    int64      `json:"buyer_id"`
	Items      []LineItem `json:"items"`
	TotalCents int64      `json:"total_cents"`
	PlacedAt   time.Time  `json:"placed_at"`
}
