package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/domain/repository"
	"dispatch-service/internal/domain/service"
)

// RefundPaymentUseCase reverses a completed payment.
type RefundPaymentUseCase struct {
	payments  repository.PaymentRepository
	publisher service.EventPublisher
	logger    *zap.Logger
}

func NewRefundPaymentUseCase(payments repository.PaymentRepository, publisher service.EventPublisher, logger *zap.Logger) *RefundPaymentUseCase {
	return &RefundPaymentUseCase{payments: payments, publisher: publisher, logger: logger}
}

func (uc *RefundPaymentUseCase) Execute(ctx context.Context, cmd command.RefundPaymentCommand) (map[string]any, error) {
	payment, err := uc.payments.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	if err := payment.Refund(); err != nil {
		return nil, err
	}
	if err := uc.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist refund: %w", err)
	}

	event := map[string]any{
		"payment_id": payment.ID,
		"user_id":    payment.UserID,
		"amount":     payment.Money.Amount.String(),
		"currency":   payment.Money.Currency,
	}
	if cmd.Reason != nil {
		event["reason"] = *cmd.Reason
	}
	publishEvent(ctx, uc.publisher, uc.logger, "payment.refunded", event)

	uc.logger.Info("payment refunded", zap.String("payment_id", payment.ID))
	return payment.ToMap(), nil
}
