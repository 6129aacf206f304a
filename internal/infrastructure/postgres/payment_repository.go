package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/repository"
)

const paymentColumns = `
	id, user_id, amount::text, currency, payment_method, status,
	reference, metadata, transaction_id, failure_reason, created_at, updated_at
`

// paymentRepository implements repository.PaymentRepository on Postgres.
type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(pool *pgxpool.Pool) repository.PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, amount, currency, payment_method, status,
			reference, metadata, transaction_id, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	metadata, err := json.Marshal(payment.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode payment metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		payment.ID,
		payment.UserID,
		payment.Money.Amount.String(),
		payment.Money.Currency,
		string(payment.Method),
		string(payment.Status),
		payment.Reference,
		metadata,
		payment.TransactionID,
		payment.FailureReason,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanPayment(r.pool.QueryRow(ctx, query, id), id)
}

func (r *paymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	return r.scanPayment(r.pool.QueryRow(ctx, query, transactionID), transactionID)
}

func (r *paymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, transaction_id = $3, failure_reason = $4, metadata = $5, updated_at = $6
		WHERE id = $1
	`

	metadata, err := json.Marshal(payment.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode payment metadata: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query,
		payment.ID,
		string(payment.Status),
		payment.TransactionID,
		payment.FailureReason,
		metadata,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.NewNotFoundError("Payment", payment.ID)
	}

	return nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	return r.collectPayments(rows)
}

func (r *paymentRepository) ListStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, string(entity.PaymentStatusProcessing), olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale payments: %w", err)
	}
	defer rows.Close()

	return r.collectPayments(rows)
}

func (r *paymentRepository) collectPayments(rows pgx.Rows) ([]*entity.Payment, error) {
	var payments []*entity.Payment
	for rows.Next() {
		payment, err := r.scanPayment(rows, "")
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payment rows: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) scanPayment(row pgx.Row, lookup string) (*entity.Payment, error) {
	var (
		payment  entity.Payment
		amount   string
		currency string
		method   string
		status   string
		metadata []byte
	)
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&amount,
		&currency,
		&method,
		&status,
		&payment.Reference,
		&metadata,
		&payment.TransactionID,
		&payment.FailureReason,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.NewNotFoundError("Payment", lookup)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	money, err := entity.MoneyFromString(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment amount: %w", err)
	}
	payment.Money = money
	payment.Method = entity.PaymentMethod(method)
	payment.Status = entity.PaymentStatus(status)

	if err := json.Unmarshal(metadata, &payment.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode payment metadata: %w", err)
	}
	return &payment, nil
}
