package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/domain/repository"
	"dispatch-service/internal/domain/service"
)

// UpdateUserUseCase applies a partial update: only fields present in the
// command change, and only those fields appear in the published event.
type UpdateUserUseCase struct {
	users     repository.UserRepository
	publisher service.EventPublisher
	logger    *zap.Logger
}

func NewUpdateUserUseCase(users repository.UserRepository, publisher service.EventPublisher, logger *zap.Logger) *UpdateUserUseCase {
	return &UpdateUserUseCase{users: users, publisher: publisher, logger: logger}
}

func (uc *UpdateUserUseCase) Execute(ctx context.Context, cmd command.UpdateUserCommand) (map[string]any, error) {
	user, err := uc.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if cmd.Name != nil {
		if err := user.UpdateName(*cmd.Name); err != nil {
			return nil, err
		}
		changes["name"] = user.Name
	}
	if cmd.Age != nil {
		if err := user.UpdateAge(cmd.Age); err != nil {
			return nil, err
		}
		changes["age"] = *cmd.Age
	}
	if cmd.Metadata != nil {
		for key, value := range cmd.Metadata {
			user.AddMetadata(key, value)
		}
		changes["metadata"] = cmd.Metadata
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist user update: %w", err)
	}

	publishEvent(ctx, uc.publisher, uc.logger, "user.updated", map[string]any{
		"user_id": user.ID,
		"changes": changes,
	})

	uc.logger.Info("user updated", zap.String("user_id", user.ID), zap.Int("changed_fields", len(changes)))
	return user.ToMap(), nil
}
