package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/repository"
)

// paymentRepository implements repository.PaymentRepository in memory.
type paymentRepository struct {
	mu   sync.RWMutex
	byID map[string]*entity.Payment
}

// NewPaymentRepository creates an empty in-memory payment repository.
func NewPaymentRepository() repository.PaymentRepository {
	return &paymentRepository{byID: make(map[string]*entity.Payment)}
}

func (r *paymentRepository) Create(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[payment.ID] = clonePayment(payment)
	return nil
}

func (r *paymentRepository) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.byID[id]
	if !ok {
		return nil, entity.NewNotFoundError("Payment", id)
	}
	return clonePayment(payment), nil
}

func (r *paymentRepository) GetByTransactionID(_ context.Context, transactionID string) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, payment := range r.byID {
		if payment.TransactionID != nil && *payment.TransactionID == transactionID {
			return clonePayment(payment), nil
		}
	}
	return nil, entity.NewNotFoundError("Payment", transactionID)
}

func (r *paymentRepository) Update(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[payment.ID]; !ok {
		return entity.NewNotFoundError("Payment", payment.ID)
	}
	r.byID[payment.ID] = clonePayment(payment)
	return nil
}

func (r *paymentRepository) ListByUser(_ context.Context, userID string, limit int) ([]*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var payments []*entity.Payment
	for _, payment := range r.byID {
		if payment.UserID == userID {
			payments = append(payments, clonePayment(payment))
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	if limit > 0 && len(payments) > limit {
		payments = payments[:limit]
	}
	return payments, nil
}

func (r *paymentRepository) ListStaleProcessing(_ context.Context, olderThan time.Time, limit int) ([]*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var payments []*entity.Payment
	for _, payment := range r.byID {
		if payment.Status == entity.PaymentStatusProcessing && payment.UpdatedAt.Before(olderThan) {
			payments = append(payments, clonePayment(payment))
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].UpdatedAt.Before(payments[j].UpdatedAt)
	})
	if limit > 0 && len(payments) > limit {
		payments = payments[:limit]
	}
	return payments, nil
}

func clonePayment(p *entity.Payment) *entity.Payment {
	c := *p
	if p.Reference != nil {
		ref := *p.Reference
		c.Reference = &ref
	}
	if p.TransactionID != nil {
		txn := *p.TransactionID
		c.TransactionID = &txn
	}
	if p.FailureReason != nil {
		reason := *p.FailureReason
		c.FailureReason = &reason
	}
	c.Metadata = cloneMap(p.Metadata)
	return &c
}
