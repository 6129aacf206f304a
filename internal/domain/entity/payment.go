package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents how a payment is funded.
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// ParsePaymentMethod validates a raw payment method string.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPaypal, PaymentMethodBankTransfer:
		return PaymentMethod(raw), nil
	}
	return "", NewValidationError("payment_method %q is not supported", raw)
}

// PaymentStatus represents the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Payment represents a single charge against a user.
type Payment struct {
	ID            string         `json:"id" db:"id"`
	UserID        string         `json:"user_id" db:"user_id"`
	Money         Money          `json:"money"`
	Method        PaymentMethod  `json:"payment_method" db:"payment_method"`
	Status        PaymentStatus  `json:"status" db:"status"`
	Reference     *string        `json:"reference,omitempty" db:"reference"`
	Metadata      map[string]any `json:"metadata" db:"metadata"`
	TransactionID *string        `json:"transaction_id,omitempty" db:"transaction_id"`
	FailureReason *string        `json:"failure_reason,omitempty" db:"failure_reason"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// NewPayment builds a validated payment in the pending state.
func NewPayment(userID string, money Money, method PaymentMethod, reference *string, metadata map[string]any) (*Payment, error) {
	if userID == "" {
		return nil, NewValidationError("user_id must not be empty")
	}
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	now := time.Now().UTC()
	return &Payment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Money:     money,
		Method:    method,
		Status:    PaymentStatusPending,
		Reference: reference,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkAsProcessing moves a pending payment to processing.
func (p *Payment) MarkAsProcessing() error {
	if p.Status != PaymentStatusPending {
		return p.transitionViolation("processing")
	}
	p.Status = PaymentStatusProcessing
	p.touch()
	return nil
}

// MarkAsCompleted finishes a pending or processing payment and records the
// gateway transaction id.
func (p *Payment) MarkAsCompleted(transactionID string) error {
	if p.Status != PaymentStatusPending && p.Status != PaymentStatusProcessing {
		return p.transitionViolation("completed")
	}
	p.Status = PaymentStatusCompleted
	p.TransactionID = &transactionID
	p.touch()
	return nil
}

// MarkAsFailed fails a pending or processing payment with a reason.
func (p *Payment) MarkAsFailed(reason string) error {
	if p.Status != PaymentStatusPending && p.Status != PaymentStatusProcessing {
		return p.transitionViolation("failed")
	}
	p.Status = PaymentStatusFailed
	p.FailureReason = &reason
	p.touch()
	return nil
}

// Refund reverses a completed payment.
func (p *Payment) Refund() error {
	if p.Status != PaymentStatusCompleted {
		return p.transitionViolation("refunded")
	}
	p.Status = PaymentStatusRefunded
	p.touch()
	return nil
}

func (p *Payment) transitionViolation(target string) error {
	return NewBusinessRuleViolation(
		"payment_status_transition",
		fmt.Sprintf("cannot transition from %s to %s", p.Status, target),
	)
}

func (p *Payment) touch() {
	now := time.Now().UTC()
	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(time.Nanosecond)
	}
	p.UpdatedAt = now
}

// ToMap converts the payment to its wire shape. The amount is a decimal
// string to keep exact precision.
func (p *Payment) ToMap() map[string]any {
	m := map[string]any{
		"id":             p.ID,
		"user_id":        p.UserID,
		"amount":         p.Money.Amount.String(),
		"currency":       p.Money.Currency,
		"payment_method": string(p.Method),
		"status":         string(p.Status),
		"metadata":       p.Metadata,
		"created_at":     p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":     p.UpdatedAt.Format(time.RFC3339Nano),
	}
	if p.Reference != nil {
		m["reference"] = *p.Reference
	}
	if p.TransactionID != nil {
		m["transaction_id"] = *p.TransactionID
	}
	if p.FailureReason != nil {
		m["failure_reason"] = *p.FailureReason
	}
	return m
}

// PaymentFromMap rebuilds a payment from its wire shape.
func PaymentFromMap(m map[string]any) (*Payment, error) {
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return nil, NewValidationError("payment map is missing id")
	}
	userID, _ := m["user_id"].(string)
	amount, _ := m["amount"].(string)
	currency, _ := m["currency"].(string)
	money, err := MoneyFromString(amount, currency)
	if err != nil {
		return nil, err
	}
	method, err := ParsePaymentMethod(stringValue(m, "payment_method"))
	if err != nil {
		return nil, err
	}
	metadata, _ := m["metadata"].(map[string]any)
	if metadata == nil {
		metadata = map[string]any{}
	}
	createdAt, err := parseMapTime(m, "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseMapTime(m, "updated_at")
	if err != nil {
		return nil, err
	}
	p := &Payment{
		ID:        id,
		UserID:    userID,
		Money:     money,
		Method:    method,
		Status:    PaymentStatus(stringValue(m, "status")),
		Metadata:  metadata,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if ref, ok := m["reference"].(string); ok {
		p.Reference = &ref
	}
	if txn, ok := m["transaction_id"].(string); ok {
		p.TransactionID = &txn
	}
	if reason, ok := m["failure_reason"].(string); ok {
		p.FailureReason = &reason
	}
	return p, nil
}

func stringValue(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
