package handler

import (
	"context"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/usecase"
)

// CreateUserHandler dispatches create_user for one transport.
type CreateUserHandler struct {
	uc        *usecase.CreateUserUseCase
	transport string
	logger    *zap.Logger
}

func NewCreateUserHandler(uc *usecase.CreateUserUseCase, transport string, logger *zap.Logger) *CreateUserHandler {
	return &CreateUserHandler{uc: uc, transport: transport, logger: logger}
}

func (h *CreateUserHandler) Operation() string { return dispatch.OpCreateUser }
func (h *CreateUserHandler) Transport() string { return h.transport }

func (h *CreateUserHandler) Handle(ctx context.Context, data map[string]any, rc dispatch.Context) (map[string]any, error) {
	cmd, err := command.CreateUserCommandFromMap(data)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("handling create_user",
		zap.String("transport", h.transport),
		zap.String("correlation_id", rc.CorrelationID),
	)
	return h.uc.Execute(ctx, cmd)
}

// UpdateUserHandler dispatches update_user for one transport. The user id
// may arrive as a transport context field (HTTP path) instead of the
// payload.
type UpdateUserHandler struct {
	uc        *usecase.UpdateUserUseCase
	transport string
	logger    *zap.Logger
}

func NewUpdateUserHandler(uc *usecase.UpdateUserUseCase, transport string, logger *zap.Logger) *UpdateUserHandler {
	return &UpdateUserHandler{uc: uc, transport: transport, logger: logger}
}

func (h *UpdateUserHandler) Operation() string { return dispatch.OpUpdateUser }
func (h *UpdateUserHandler) Transport() string { return h.transport }

func (h *UpdateUserHandler) Handle(ctx context.Context, data map[string]any, rc dispatch.Context) (map[string]any, error) {
	cmd, err := command.UpdateUserCommandFromMap(withContextField(data, rc, "user_id"))
	if err != nil {
		return nil, err
	}
	h.logger.Debug("handling update_user",
		zap.String("transport", h.transport),
		zap.String("user_id", cmd.UserID),
		zap.String("correlation_id", rc.CorrelationID),
	)
	return h.uc.Execute(ctx, cmd)
}

// DeleteUserHandler dispatches delete_user for one transport.
type DeleteUserHandler struct {
	uc        *usecase.DeleteUserUseCase
	transport string
	logger    *zap.Logger
}

func NewDeleteUserHandler(uc *usecase.DeleteUserUseCase, transport string, logger *zap.Logger) *DeleteUserHandler {
	return &DeleteUserHandler{uc: uc, transport: transport, logger: logger}
}

func (h *DeleteUserHandler) Operation() string { return dispatch.OpDeleteUser }
func (h *DeleteUserHandler) Transport() string { return h.transport }

func (h *DeleteUserHandler) Handle(ctx context.Context, data map[string]any, rc dispatch.Context) (map[string]any, error) {
	cmd, err := command.DeleteUserCommandFromMap(withContextField(data, rc, "user_id"))
	if err != nil {
		return nil, err
	}
	h.logger.Debug("handling delete_user",
		zap.String("transport", h.transport),
		zap.String("user_id", cmd.UserID),
		zap.String("correlation_id", rc.CorrelationID),
	)
	return h.uc.Execute(ctx, cmd)
}
