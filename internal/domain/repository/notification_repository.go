package repository

import (
	"context"
	"time"

	"dispatch-service/internal/domain/entity"
)

// NotificationRepository defines storage access for notifications.
//
// Lookups return a NOT_FOUND DomainError when no row matches.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	Update(ctx context.Context, notification *entity.Notification) error
	// ListStalePending returns notifications still pending since before the
	// given instant.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Notification, error)
}
