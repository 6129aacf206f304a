package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/repository"
)

// notificationRepository implements repository.NotificationRepository in
// memory.
type notificationRepository struct {
	mu   sync.RWMutex
	byID map[string]*entity.Notification
}

// NewNotificationRepository creates an empty in-memory notification
// repository.
func NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepository{byID: make(map[string]*entity.Notification)}
}

func (r *notificationRepository) Create(_ context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[notification.ID] = cloneNotification(notification)
	return nil
}

func (r *notificationRepository) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	notification, ok := r.byID[id]
	if !ok {
		return nil, entity.NewNotFoundError("Notification", id)
	}
	return cloneNotification(notification), nil
}

func (r *notificationRepository) Update(_ context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[notification.ID]; !ok {
		return entity.NewNotFoundError("Notification", notification.ID)
	}
	r.byID[notification.ID] = cloneNotification(notification)
	return nil
}

func (r *notificationRepository) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]*entity.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var notifications []*entity.Notification
	for _, notification := range r.byID {
		if notification.Status == entity.NotificationStatusPending && notification.CreatedAt.Before(olderThan) {
			notifications = append(notifications, cloneNotification(notification))
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func cloneNotification(n *entity.Notification) *entity.Notification {
	c := *n
	if n.TemplateID != nil {
		id := *n.TemplateID
		c.TemplateID = &id
	}
	if n.UserID != nil {
		id := *n.UserID
		c.UserID = &id
	}
	if n.ExternalID != nil {
		id := *n.ExternalID
		c.ExternalID = &id
	}
	if n.FailureReason != nil {
		reason := *n.FailureReason
		c.FailureReason = &reason
	}
	if n.SentAt != nil {
		t := *n.SentAt
		c.SentAt = &t
	}
	c.Metadata = cloneMap(n.Metadata)
	return &c
}
