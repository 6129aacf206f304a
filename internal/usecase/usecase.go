// Package usecase holds one orchestration unit per business operation.
// Use cases own entity mutation and the persist/publish sequence; they
// reach storage and external services only through domain ports.
package usecase

import (
	"context"

	"go.uber.org/zap"

	"dispatch-service/internal/correlation"
	"dispatch-service/internal/domain/service"
)

// publishEvent fires a domain event and logs failures. Publishing is
// fire-and-forget: it never fails the owning use case.
func publishEvent(ctx context.Context, publisher service.EventPublisher, logger *zap.Logger, eventType string, data map[string]any) {
	if err := publisher.Publish(ctx, eventType, data, correlation.From(ctx)); err != nil {
		logger.Warn("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
