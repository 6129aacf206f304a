package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/repository"
)

const notificationColumns = `
	id, recipient, channel, subject, body, template_id, user_id, status,
	external_id, failure_reason, metadata, sent_at, created_at, updated_at
`

// notificationRepository implements repository.NotificationRepository on
// Postgres.
type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient, channel, subject, body, template_id, user_id,
			status, external_id, failure_reason, metadata, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	metadata, err := json.Marshal(notification.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode notification metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		notification.ID,
		notification.Recipient,
		string(notification.Channel),
		notification.Subject,
		notification.Body,
		notification.TemplateID,
		notification.UserID,
		string(notification.Status),
		notification.ExternalID,
		notification.FailureReason,
		metadata,
		notification.SentAt,
		notification.CreatedAt,
		notification.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return r.scanNotification(r.pool.QueryRow(ctx, query, id), id)
}

func (r *notificationRepository) Update(ctx context.Context, notification *entity.Notification) error {
	query := `
		UPDATE notifications
		SET status = $2, external_id = $3, failure_reason = $4, sent_at = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		notification.ID,
		string(notification.Status),
		notification.ExternalID,
		notification.FailureReason,
		notification.SentAt,
		notification.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.NewNotFoundError("Notification", notification.ID)
	}

	return nil
}

func (r *notificationRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, string(entity.NotificationStatusPending), olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		notification, err := r.scanNotification(rows, "")
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notification rows: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) scanNotification(row pgx.Row, lookup string) (*entity.Notification, error) {
	var (
		notification entity.Notification
		channel      string
		status       string
		metadata     []byte
	)
	err := row.Scan(
		&notification.ID,
		&notification.Recipient,
		&channel,
		&notification.Subject,
		&notification.Body,
		&notification.TemplateID,
		&notification.UserID,
		&status,
		&notification.ExternalID,
		&notification.FailureReason,
		&metadata,
		&notification.SentAt,
		&notification.CreatedAt,
		&notification.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.NewNotFoundError("Notification", lookup)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	notification.Channel = entity.Channel(channel)
	notification.Status = entity.NotificationStatus(status)

	if err := json.Unmarshal(metadata, &notification.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode notification metadata: %w", err)
	}
	return &notification, nil
}
