package order

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated = "OrderCreated"

	TopicOrderCreated = "order.created"
)

// Envelope wraps event payloads published to the broker.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

// CreatedPayload describes a freshly submitted order.
type CreatedPayload struct {
	OrderID string      `json:"order_id"`
	UserID  string      `json:"user_id"`
	Total   float64     `json:"total"`
	Items   []ItemBrief `json:"items"`
}

// ItemBrief is the event-sized view of an order item.
type ItemBrief struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Agreed    *float64 `json:"negotiated_price,omitempty"`
}

// PartitionKey keeps all events for one order on a single partition so
// consumers observe them in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
