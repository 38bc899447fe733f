package cart

import "time"

// Line is a single cart entry. ProductID is a weak reference into the
// catalog; NegotiatedPrice, when non-nil, overrides the list price for
// totals and is always at or below it.
type Line struct {
	ProductID       string   `json:"productId"`
	Quantity        int      `json:"quantity"`
	NegotiatedPrice *float64 `json:"negotiatedPrice,omitempty"`
}

// Snapshot is the persisted form of one partition's cart.
type Snapshot struct {
	Partition string    `json:"partition"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}
