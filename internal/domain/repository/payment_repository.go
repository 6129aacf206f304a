package repository

import (
	"context"
	"time"

	"dispatch-service/internal/domain/entity"
)

// PaymentRepository defines storage access for payments.
//
// Lookups return a NOT_FOUND DomainError when no row matches.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Payment, error)
	// ListStaleProcessing returns payments that entered processing before
	// the given instant and never reached a terminal status.
	ListStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Payment, error)
}
