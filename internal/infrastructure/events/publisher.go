// Package events implements the domain EventPublisher port: every event
// is wrapped in a standard envelope, routed to a Kafka topic by its type
// prefix and mirrored best-effort onto a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dispatch-service/internal/domain/service"
)

// Source identifies this service in published event envelopes.
const Source = "dispatch-service"

// TopicWriter is the slice of the Kafka producer the publisher needs.
type TopicWriter interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// StreamMirror is the slice of the Redis publisher the publisher needs.
type StreamMirror interface {
	Mirror(ctx context.Context, stream string, value []byte) error
}

// envelope is the wire form of a published event.
type envelope struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	Data          map[string]any `json:"data"`
	CorrelationID *string        `json:"correlation_id"`
	Timestamp     string         `json:"timestamp"`
	Source        string         `json:"source"`
}

// Publisher fans events out to Kafka and, when configured, Redis.
type Publisher struct {
	writer TopicWriter
	mirror StreamMirror
	logger *zap.Logger
}

var _ service.EventPublisher = (*Publisher)(nil)

// NewPublisher creates the composite publisher. mirror may be nil when no
// Redis mirror is configured.
func NewPublisher(writer TopicWriter, mirror StreamMirror, logger *zap.Logger) *Publisher {
	return &Publisher{writer: writer, mirror: mirror, logger: logger}
}

// Publish wraps the payload in the event envelope and routes it. The
// Kafka write is the source of truth; a Redis mirror failure is logged
// and swallowed.
func (p *Publisher) Publish(ctx context.Context, eventType string, data map[string]any, correlationID string) error {
	env := envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Source:    Source,
	}
	if correlationID != "" {
		env.CorrelationID = &correlationID
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", eventType, err)
	}

	if err := p.writer.Publish(ctx, TopicForEvent(eventType), env.EventID, payload); err != nil {
		return err
	}

	if p.mirror != nil {
		if err := p.mirror.Mirror(ctx, "events."+eventType, payload); err != nil {
			p.logger.Warn("failed to mirror event to redis",
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}

	p.logger.Debug("event published",
		zap.String("event_type", eventType),
		zap.String("event_id", env.EventID),
	)
	return nil
}

// TopicForEvent routes an event type to its Kafka topic by prefix:
// user.* -> user.events, payment.* -> payment.events,
// notification.* -> notification.events, everything else ->
// general.events.
func TopicForEvent(eventType string) string {
	prefix, _, found := strings.Cut(eventType, ".")
	if !found {
		return "general.events"
	}
	switch prefix {
	case "user", "payment", "notification":
		return prefix + ".events"
	}
	return "general.events"
}
