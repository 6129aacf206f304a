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

const (
	welcomeSubject      = "Welcome aboard!"
	welcomeBodyTemplate = "Hello {name}, welcome to our platform!"
)

// CreateUserUseCase registers a new user, queues a welcome notification
// and announces the creation.
type CreateUserUseCase struct {
	users         repository.UserRepository
	userService   *service.UserDomainService
	notifications repository.NotificationRepository
	publisher     service.EventPublisher
	logger        *zap.Logger
}

func NewCreateUserUseCase(
	users repository.UserRepository,
	userService *service.UserDomainService,
	notifications repository.NotificationRepository,
	publisher service.EventPublisher,
	logger *zap.Logger,
) *CreateUserUseCase {
	return &CreateUserUseCase{
		users:         users,
		userService:   userService,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, cmd command.CreateUserCommand) (map[string]any, error) {
	user, err := entity.NewUser(cmd.Name, cmd.Email, cmd.Age, cmd.Metadata)
	if err != nil {
		return nil, err
	}
	if err := uc.userService.EnsureEmailUnique(ctx, user.Email); err != nil {
		return nil, err
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}

	uc.createWelcomeNotification(ctx, user)

	publishEvent(ctx, uc.publisher, uc.logger, "user.created", map[string]any{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
	})

	uc.logger.Info("user created", zap.String("user_id", user.ID))
	return user.ToMap(), nil
}

// createWelcomeNotification queues the welcome message. Failure here does
// not roll back the user; it is logged as a warning only.
func (uc *CreateUserUseCase) createWelcomeNotification(ctx context.Context, user *entity.User) {
	body := entity.RenderTemplate(welcomeBodyTemplate, map[string]any{"name": user.Name})
	notification, err := entity.NewNotification(
		user.Email,
		entity.ChannelEmail,
		welcomeSubject,
		body,
		&user.ID,
		nil,
		map[string]any{"type": "welcome"},
	)
	if err == nil {
		err = uc.notifications.Create(ctx, notification)
	}
	if err != nil {
		uc.logger.Warn("failed to create welcome notification",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}
