package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher mirrors event payloads onto Redis streams so local
// consumers can tail them without a Kafka client.
type StreamPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewStreamPublisher creates a stream publisher. Streams are trimmed
// approximately to maxLen entries.
func NewStreamPublisher(client *redis.Client, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, maxLen: maxLen}
}

// Mirror appends the payload to the given stream.
func (p *StreamPublisher) Mirror(ctx context.Context, stream string, value []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{"event": value},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to mirror event to stream %s: %w", stream, err)
	}
	return nil
}
