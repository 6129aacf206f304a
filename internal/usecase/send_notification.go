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

// SendNotificationUseCase renders and delivers a notification. Only the
// email channel is wired to a provider; other channels fail immediately
// with a "not implemented" reason. A provider exception marks the
// notification failed and propagates as an infrastructure failure.
type SendNotificationUseCase struct {
	notifications repository.NotificationRepository
	email         service.EmailService
	publisher     service.EventPublisher
	logger        *zap.Logger
}

func NewSendNotificationUseCase(
	notifications repository.NotificationRepository,
	email service.EmailService,
	publisher service.EventPublisher,
	logger *zap.Logger,
) *SendNotificationUseCase {
	return &SendNotificationUseCase{
		notifications: notifications,
		email:         email,
		publisher:     publisher,
		logger:        logger,
	}
}

func (uc *SendNotificationUseCase) Execute(ctx context.Context, cmd command.SendNotificationCommand) (map[string]any, error) {
	channel, err := entity.ParseChannel(cmd.Channel)
	if err != nil {
		return nil, err
	}

	body := entity.RenderTemplate(cmd.Body, cmd.Variables)
	notification, err := entity.NewNotification(cmd.Recipient, channel, cmd.Subject, body, cmd.UserID, cmd.TemplateID, nil)
	if err != nil {
		return nil, err
	}
	if err := uc.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	if channel != entity.ChannelEmail {
		return uc.finishFailed(ctx, notification, fmt.Sprintf("Channel %s not implemented", channel))
	}

	result, err := uc.email.Send(ctx, notification.Recipient, notification.Subject, notification.Body, notification.TemplateID, cmd.Variables)
	if err != nil {
		uc.markFailed(ctx, notification, "Service error: "+err.Error())
		return nil, fmt.Errorf("email service call failed: %w", err)
	}

	if !result.Success {
		return uc.finishFailed(ctx, notification, result.Error)
	}

	if err := notification.MarkAsSent(result.MessageID); err != nil {
		return nil, err
	}
	if err := uc.notifications.Update(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to persist notification status: %w", err)
	}
	uc.publishStatus(ctx, notification, "notification.sent")

	uc.logger.Info("notification sent",
		zap.String("notification_id", notification.ID),
		zap.String("message_id", result.MessageID),
	)
	return notification.ToMap(), nil
}

// finishFailed marks the notification failed, persists it and returns the
// final state as the operation's (successful) result.
func (uc *SendNotificationUseCase) finishFailed(ctx context.Context, notification *entity.Notification, reason string) (map[string]any, error) {
	if err := notification.MarkAsFailed(reason); err != nil {
		return nil, err
	}
	if err := uc.notifications.Update(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to persist notification status: %w", err)
	}
	uc.publishStatus(ctx, notification, "notification.failed")
	uc.logger.Info("notification failed",
		zap.String("notification_id", notification.ID),
		zap.String("reason", reason),
	)
	return notification.ToMap(), nil
}

// markFailed records the failure best-effort on the way out of an
// infrastructure error.
func (uc *SendNotificationUseCase) markFailed(ctx context.Context, notification *entity.Notification, reason string) {
	if err := notification.MarkAsFailed(reason); err != nil {
		uc.logger.Warn("could not mark notification failed", zap.String("notification_id", notification.ID), zap.Error(err))
		return
	}
	if err := uc.notifications.Update(ctx, notification); err != nil {
		uc.logger.Warn("failed to persist notification failure",
			zap.String("notification_id", notification.ID),
			zap.Error(err),
		)
	}
}

func (uc *SendNotificationUseCase) publishStatus(ctx context.Context, notification *entity.Notification, eventType string) {
	publishEvent(ctx, uc.publisher, uc.logger, eventType, map[string]any{
		"notification_id": notification.ID,
		"recipient":       notification.Recipient,
		"channel":         string(notification.Channel),
		"status":          string(notification.Status),
	})
}
