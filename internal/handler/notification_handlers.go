package handler

import (
	"context"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/usecase"
)

// SendNotificationHandler dispatches send_notification for one transport.
type SendNotificationHandler struct {
	uc        *usecase.SendNotificationUseCase
	transport string
	logger    *zap.Logger
}

func NewSendNotificationHandler(uc *usecase.SendNotificationUseCase, transport string, logger *zap.Logger) *SendNotificationHandler {
	return &SendNotificationHandler{uc: uc, transport: transport, logger: logger}
}

func (h *SendNotificationHandler) Operation() string { return dispatch.OpSendNotification }
func (h *SendNotificationHandler) Transport() string { return h.transport }

func (h *SendNotificationHandler) Handle(ctx context.Context, data map[string]any, rc dispatch.Context) (map[string]any, error) {
	cmd, err := command.SendNotificationCommandFromMap(data)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("handling send_notification",
		zap.String("transport", h.transport),
		zap.String("channel", cmd.Channel),
		zap.String("correlation_id", rc.CorrelationID),
	)
	return h.uc.Execute(ctx, cmd)
}
