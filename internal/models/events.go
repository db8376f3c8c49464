package models

import "time"

// Event types
const (
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderFlagged       = "ORDER_FLAGGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent published when an order completes a transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64        `json:"order_id"`
	FromStatus Status       `json:"from_status"`
	ToStatus   Status       `json:"to_status"`
	Deltas     []StockDelta `json:"deltas,omitempty"`
}

// OrderFlaggedEvent published when an order needs operator attention,
// e.g. an item list that parsed into neither recognized shape
type OrderFlaggedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Reason  string `json:"reason"`
}
