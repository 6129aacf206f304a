package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/domain/repository"
	"dispatch-service/internal/domain/service"
)

// DeleteUserUseCase removes a user and announces the deletion.
type DeleteUserUseCase struct {
	users     repository.UserRepository
	publisher service.EventPublisher
	logger    *zap.Logger
}

func NewDeleteUserUseCase(users repository.UserRepository, publisher service.EventPublisher, logger *zap.Logger) *DeleteUserUseCase {
	return &DeleteUserUseCase{users: users, publisher: publisher, logger: logger}
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, cmd command.DeleteUserCommand) (map[string]any, error) {
	user, err := uc.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := uc.users.Delete(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	publishEvent(ctx, uc.publisher, uc.logger, "user.deleted", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})

	uc.logger.Info("user deleted", zap.String("user_id", user.ID))
	return map[string]any{"user_id": user.ID, "deleted": true}, nil
}
