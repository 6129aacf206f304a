// Package kafka consumes command topics and feeds them into the
// dispatch core. Delivery is at-least-once: offsets are committed after
// handling and redelivered messages are suppressed through the dedup
// store when they carry a correlation id.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"dispatch-service/internal/dispatch"
)

// Dispatcher executes a command resolved from a topic.
type Dispatcher interface {
	Dispatch(ctx context.Context, operation, transport string, data map[string]any, rc dispatch.Context) dispatch.Result
}

// Deduper reports whether a message key was already handled.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
}

// commandMessage is the wire shape on command topics. Operation is
// optional; when absent the topic's configured operation applies.
type commandMessage struct {
	Operation     string         `json:"operation,omitempty"`
	Data          map[string]any `json:"data"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// Consumer reads command topics with one reader per topic, all sharing
// a consumer group.
type Consumer struct {
	readers    []*kafka.Reader
	operations map[string]string
	dispatcher Dispatcher
	dedup      Deduper
	logger     *zap.Logger
}

// NewConsumer creates a consumer for the given topic→operation mapping.
// dedup may be nil, disabling duplicate suppression.
func NewConsumer(brokers []string, groupID string, topicOperations map[string]string, dispatcher Dispatcher, dedup Deduper, logger *zap.Logger) *Consumer {
	topics := make([]string, 0, len(topicOperations))
	for topic := range topicOperations {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	readers := make([]*kafka.Reader, 0, len(topics))
	for _, topic := range topics {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       10e3, // 10KB
			MaxBytes:       10e6, // 10MB
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		}))
	}

	return &Consumer{
		readers:    readers,
		operations: topicOperations,
		dispatcher: dispatcher,
		dedup:      dedup,
		logger:     logger,
	}
}

// Start consumes all topics until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, reader := range c.readers {
		wg.Add(1)
		go func(reader *kafka.Reader) {
			defer wg.Done()
			c.consume(ctx, reader)
		}(reader)
	}
	wg.Wait()
	return nil
}

func (c *Consumer) consume(ctx context.Context, reader *kafka.Reader) {
	topic := reader.Config().Topic
	c.logger.Info("kafka consumer started", zap.String("topic", topic))

	for {
		message, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("kafka consumer stopping", zap.String("topic", topic))
				return
			}
			c.logger.Error("failed to fetch message", zap.String("topic", topic), zap.Error(err))
			continue
		}

		if err := c.processMessage(ctx, message); err != nil {
			c.logger.Error("failed to process message",
				zap.String("topic", message.Topic),
				zap.Int("partition", message.Partition),
				zap.Int64("offset", message.Offset),
				zap.Error(err),
			)
		}

		// Committed even when processing failed: a message that cannot
		// be decoded will not decode on redelivery either, and business
		// failures were already captured in the dispatch result.
		if err := reader.CommitMessages(ctx, message); err != nil {
			c.logger.Error("failed to commit offset", zap.String("topic", message.Topic), zap.Error(err))
		}
	}
}

// processMessage decodes one command message and dispatches it.
func (c *Consumer) processMessage(ctx context.Context, message kafka.Message) error {
	var cmd commandMessage
	if err := json.Unmarshal(message.Value, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command message: %w", err)
	}

	operation := c.operations[message.Topic]
	if cmd.Operation != "" {
		operation = cmd.Operation
	}
	if operation == "" {
		c.logger.Warn("no operation mapped for topic", zap.String("topic", message.Topic))
		return nil
	}

	if c.dedup != nil && cmd.CorrelationID != "" {
		seen, err := c.dedup.Seen(ctx, operation+":"+cmd.CorrelationID)
		if err != nil {
			c.logger.Warn("dedup check failed", zap.String("correlation_id", cmd.CorrelationID), zap.Error(err))
		} else if seen {
			c.logger.Info("skipping duplicate message",
				zap.String("operation", operation),
				zap.String("correlation_id", cmd.CorrelationID),
			)
			return nil
		}
	}

	rc := dispatch.Context{
		Transport:     dispatch.TransportKafka,
		CorrelationID: cmd.CorrelationID,
		Metadata: map[string]any{
			"topic":     message.Topic,
			"partition": message.Partition,
			"offset":    message.Offset,
		},
	}
	if len(message.Key) > 0 {
		rc.Metadata["key"] = string(message.Key)
	}

	res := c.dispatcher.Dispatch(ctx, operation, dispatch.TransportKafka, cmd.Data, rc)
	if !res.Success {
		c.logger.Error("command failed",
			zap.String("operation", operation),
			zap.String("topic", message.Topic),
			zap.String("error_code", res.ErrorCode),
			zap.String("error", res.Message),
		)
		return nil
	}

	c.logger.Info("command processed",
		zap.String("operation", operation),
		zap.String("topic", message.Topic),
		zap.Float64("execution_time_ms", res.ExecutionTimeMS),
	)
	return nil
}

// Close closes all topic readers.
func (c *Consumer) Close() error {
	var firstErr error
	for _, reader := range c.readers {
		if err := reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
