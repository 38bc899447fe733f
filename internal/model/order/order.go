package order

import "time"

// Order is the persisted checkout record. Totals are snapshotted at
// creation time; later status transitions belong to order management.
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Status    Status    `json:"status"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
	Items     []Item    `json:"items,omitempty"`
}

// Item snapshots one cart line at purchase time. Price is the list price
// when the order was placed; NegotiatedPrice carries the per-line override
// if one was agreed.
type Item struct {
	ID              string   `json:"id"`
	OrderID         string   `json:"orderId"`
	ProductID       string   `json:"productId"`
	Quantity        int      `json:"quantity"`
	Price           float64  `json:"price"`
	NegotiatedPrice *float64 `json:"negotiatedPrice,omitempty"`
}
