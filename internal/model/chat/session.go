package chat

import "time"

// Session captures one conversation. ProductID is set for negotiation
// sessions and empty for general assistant chats.
type Session struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId,omitempty"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
