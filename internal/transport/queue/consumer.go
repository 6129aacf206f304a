// Package queue consumes the Redis Streams task queue and feeds tasks
// into the dispatch core. A consumer group gives at-least-once delivery;
// entries are acknowledged after handling and duplicates are suppressed
// through the dedup store when a correlation id is present.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dispatch-service/internal/dispatch"
)

const busyGroupErr = "BUSYGROUP Consumer Group name already exists"

// Dispatcher executes a task resolved from the queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, operation, transport string, data map[string]any, rc dispatch.Context) dispatch.Result
}

// Deduper reports whether a task key was already handled.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
}

// Consumer reads tasks from a Redis Stream through a consumer group.
//
// Entries carry the fields task, data (JSON object), correlation_id and
// retries. Unknown task names fall through to the registry, which
// rejects them with a uniform result.
type Consumer struct {
	client     *redis.Client
	stream     string
	group      string
	consumer   string
	operations map[string]string
	dispatcher Dispatcher
	dedup      Deduper
	logger     *zap.Logger
}

// NewConsumer creates a queue consumer. operations maps task names to
// operations; a task absent from the map is used as the operation name
// directly. dedup may be nil.
func NewConsumer(client *redis.Client, stream, group, consumer string, operations map[string]string, dispatcher Dispatcher, dedup Deduper, logger *zap.Logger) *Consumer {
	return &Consumer{
		client:     client,
		stream:     stream,
		group:      group,
		consumer:   consumer,
		operations: operations,
		dispatcher: dispatcher,
		dedup:      dedup,
		logger:     logger,
	}
}

// Start creates the consumer group if needed and consumes until ctx is
// cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && err.Error() != busyGroupErr {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("queue consumer started",
		zap.String("stream", c.stream),
		zap.String("group", c.group),
		zap.String("consumer", c.consumer),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("queue consumer stopping", zap.String("stream", c.stream))
			return nil
		default:
			if err := c.readBatch(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				c.logger.Error("failed to read from stream", zap.String("stream", c.stream), zap.Error(err))
				time.Sleep(time.Second)
			}
		}
	}
}

func (c *Consumer) readBatch(ctx context.Context) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := c.handleMessage(ctx, message); err != nil {
				c.logger.Error("failed to handle task",
					zap.String("message_id", message.ID),
					zap.Error(err),
				)
			}

			// Acked even on failure: a malformed entry stays malformed
			// on redelivery, and business failures were already captured
			// in the dispatch result.
			if err := c.client.XAck(ctx, c.stream, c.group, message.ID).Err(); err != nil {
				c.logger.Error("failed to ack message", zap.String("message_id", message.ID), zap.Error(err))
			}
		}
	}
	return nil
}

// handleMessage decodes one stream entry and dispatches it.
func (c *Consumer) handleMessage(ctx context.Context, message redis.XMessage) error {
	task, _ := message.Values["task"].(string)
	if task == "" {
		return fmt.Errorf("message %s has no task field", message.ID)
	}

	operation, ok := c.operations[task]
	if !ok {
		operation = task
	}

	data := map[string]any{}
	if raw, ok := message.Values["data"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return fmt.Errorf("failed to unmarshal task data: %w", err)
		}
	}

	correlationID, _ := message.Values["correlation_id"].(string)
	retries := 0
	if raw, ok := message.Values["retries"].(string); ok && raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			retries = n
		}
	}

	if c.dedup != nil && correlationID != "" {
		seen, err := c.dedup.Seen(ctx, operation+":"+correlationID)
		if err != nil {
			c.logger.Warn("dedup check failed", zap.String("correlation_id", correlationID), zap.Error(err))
		} else if seen {
			c.logger.Info("skipping duplicate task",
				zap.String("operation", operation),
				zap.String("correlation_id", correlationID),
			)
			return nil
		}
	}

	rc := dispatch.Context{
		Transport:     dispatch.TransportQueue,
		CorrelationID: correlationID,
		Metadata: map[string]any{
			"stream":     c.stream,
			"message_id": message.ID,
			"consumer":   c.consumer,
			"retries":    retries,
		},
	}

	res := c.dispatcher.Dispatch(ctx, operation, dispatch.TransportQueue, data, rc)
	if !res.Success {
		c.logger.Error("task failed",
			zap.String("operation", operation),
			zap.String("message_id", message.ID),
			zap.String("error_code", res.ErrorCode),
			zap.String("error", res.Message),
		)
		return nil
	}

	c.logger.Info("task processed",
		zap.String("operation", operation),
		zap.String("message_id", message.ID),
		zap.Float64("execution_time_ms", res.ExecutionTimeMS),
	)
	return nil
}
