package handler

import (
	"context"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/usecase"
)

// ProcessPaymentHandler dispatches process_payment for one transport.
type ProcessPaymentHandler struct {
	uc        *usecase.ProcessPaymentUseCase
	transport string
	logger    *zap.Logger
}

func NewProcessPaymentHandler(uc *usecase.ProcessPaymentUseCase, transport string, logger *zap.Logger) *ProcessPaymentHandler {
	return &ProcessPaymentHandler{uc: uc, transport: transport, logger: logger}
}

func (h *ProcessPaymentHandler) Operation() string { return dispatch.OpProcessPayment }
func (h *ProcessPaymentHandler) Transport() string { return h.transport }

func (h *ProcessPaymentHandler) Handle(ctx context.Context, data map[string]any, rc dispatch.Context) (map[string]any, error) {
	cmd, err := command.ProcessPaymentCommandFromMap(data)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("handling process_payment",
		zap.String("transport", h.transport),
		zap.String("user_id", cmd.UserID),
		zap.String("correlation_id", rc.CorrelationID),
	)
	return h.uc.Execute(ctx, cmd)
}

// RefundPaymentHandler dispatches refund_payment for one transport. The
// payment id may arrive as a transport context field (HTTP path).
type RefundPaymentHandler struct {
	uc        *usecase.RefundPaymentUseCase
	transport string
	logger    *zap.Logger
}

func NewRefundPaymentHandler(uc *usecase.RefundPaymentUseCase, transport string, logger *zap.Logger) *RefundPaymentHandler {
	return &RefundPaymentHandler{uc: uc, transport: transport, logger: logger}
}

func (h *RefundPaymentHandler) Operation() string { return dispatch.OpRefundPayment }
func (h *RefundPaymentHandler) Transport() string { return h.transport }

func (h *RefundPaymentHandler) Handle(ctx context.Context, data map[string]any, rc dispatch.Context) (map[string]any, error) {
	cmd, err := command.RefundPaymentCommandFromMap(withContextField(data, rc, "payment_id"))
	if err != nil {
		return nil, err
	}
	h.logger.Debug("handling refund_payment",
		zap.String("transport", h.transport),
		zap.String("payment_id", cmd.PaymentID),
		zap.String("correlation_id", rc.CorrelationID),
	)
	return h.uc.Execute(ctx, cmd)
}
