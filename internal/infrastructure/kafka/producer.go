package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes event payloads to Kafka. The topic is chosen per
// message so one writer serves every event stream.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates an async Kafka producer. Write failures surface
// through the completion callback and are logged; publishing is treated
// as fire-and-forget by callers.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	p := &Producer{logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("async kafka write failed",
					zap.Int("messages", len(messages)),
					zap.Error(err),
				)
			}
		},
	}
	return p
}

// Publish writes one message to the given topic.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
