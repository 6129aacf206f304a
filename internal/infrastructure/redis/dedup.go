package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore remembers recently seen message keys so redelivered queue
// and stream messages are dropped instead of re-executed.
type DedupStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDedupStore creates a dedup store. Keys expire after ttl, bounding
// the dedup window to the transport's redelivery horizon.
func NewDedupStore(client *redis.Client, prefix string, ttl time.Duration) *DedupStore {
	return &DedupStore{client: client, prefix: prefix, ttl: ttl}
}

// Seen records the key and reports whether it was already present.
func (s *DedupStore) Seen(ctx context.Context, key string) (bool, error) {
	set, err := s.client.SetNX(ctx, s.prefix+":"+key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}
	return !set, nil
}
