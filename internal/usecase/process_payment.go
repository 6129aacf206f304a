package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/repository"
	"dispatch-service/internal/domain/service"
)

// ProcessPaymentUseCase charges a user through the payment gateway,
// walking the payment through pending -> processing -> completed/failed.
// A gateway decline is a normal outcome (the payment ends failed and the
// result reflects it); a gateway transport error marks the payment failed
// and propagates as an infrastructure failure.
type ProcessPaymentUseCase struct {
	payments    repository.PaymentRepository
	userService *service.UserDomainService
	gateway     service.PaymentGateway
	publisher   service.EventPublisher
	logger      *zap.Logger
}

func NewProcessPaymentUseCase(
	payments repository.PaymentRepository,
	userService *service.UserDomainService,
	gateway service.PaymentGateway,
	publisher service.EventPublisher,
	logger *zap.Logger,
) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{
		payments:    payments,
		userService: userService,
		gateway:     gateway,
		publisher:   publisher,
		logger:      logger,
	}
}

func (uc *ProcessPaymentUseCase) Execute(ctx context.Context, cmd command.ProcessPaymentCommand) (map[string]any, error) {
	user, err := uc.userService.EnsureUserExists(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	money, err := entity.MoneyFromString(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}
	method, err := entity.ParsePaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, err
	}
	payment, err := entity.NewPayment(user.ID, money, method, cmd.Reference, cmd.Metadata)
	if err != nil {
		return nil, err
	}

	if err := uc.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}
	if err := payment.MarkAsProcessing(); err != nil {
		return nil, err
	}
	if err := uc.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment status: %w", err)
	}

	result, err := uc.gateway.Process(ctx, payment.Money, payment.Method, payment.Reference)
	if err != nil {
		uc.failPayment(ctx, payment, "Gateway error: "+err.Error())
		return nil, fmt.Errorf("payment gateway call failed: %w", err)
	}

	if !result.Success {
		uc.failPayment(ctx, payment, result.Error)
		publishEvent(ctx, uc.publisher, uc.logger, "payment.failed", map[string]any{
			"payment_id": payment.ID,
			"user_id":    payment.UserID,
			"reason":     result.Error,
		})
		uc.logger.Info("payment declined",
			zap.String("payment_id", payment.ID),
			zap.String("reason", result.Error),
		)
		return payment.ToMap(), nil
	}

	if err := payment.MarkAsCompleted(result.TransactionID); err != nil {
		return nil, err
	}
	if err := uc.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment completion: %w", err)
	}

	publishEvent(ctx, uc.publisher, uc.logger, "payment.completed", map[string]any{
		"payment_id":     payment.ID,
		"user_id":        payment.UserID,
		"amount":         payment.Money.Amount.String(),
		"currency":       payment.Money.Currency,
		"transaction_id": result.TransactionID,
	})

	uc.logger.Info("payment completed",
		zap.String("payment_id", payment.ID),
		zap.String("transaction_id", result.TransactionID),
	)
	return payment.ToMap(), nil
}

// failPayment marks the payment failed and persists it best-effort; the
// caller decides whether the overall operation still succeeds.
func (uc *ProcessPaymentUseCase) failPayment(ctx context.Context, payment *entity.Payment, reason string) {
	if err := payment.MarkAsFailed(reason); err != nil {
		uc.logger.Warn("could not mark payment failed", zap.String("payment_id", payment.ID), zap.Error(err))
		return
	}
	if err := uc.payments.Update(ctx, payment); err != nil {
		uc.logger.Warn("failed to persist payment failure",
			zap.String("payment_id", payment.ID),
			zap.Error(err),
		)
	}
}
