package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bargainmart/backend/internal/model/cart"
)

// Cart snapshots live under cart:{partition}. No TTL: a cart stays until
// cleared, like the original's local storage.
const keyCartSnapshot = "cart:%s"

// CartStore persists per-partition cart snapshots in Redis.
type CartStore struct {
	client *redis.Client
}

// NewCartStore wraps a redis client into a cart store.
func NewCartStore(client *redis.Client) *CartStore {
	return &CartStore{client: client}
}

// Load returns the stored lines for a partition; a missing key is an empty
// cart, not an error.
func (s *CartStore) Load(ctx context.Context, partition string) ([]cart.Line, error) {
	data, err := s.client.Get(ctx, cartKey(partition)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snapshot cart.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot failed: %w", err)
	}
	return snapshot.Lines, nil
}

// Save overwrites the partition's snapshot.
func (s *CartStore) Save(ctx context.Context, snapshot cart.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot failed: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(snapshot.Partition), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Clear removes the partition's snapshot.
func (s *CartStore) Clear(ctx context.Context, partition string) error {
	if err := s.client.Del(ctx, cartKey(partition)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(partition string) string {
	return fmt.Sprintf(keyCartSnapshot, partition)
}
