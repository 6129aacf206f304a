// Package cron runs the background reconciler that cleans up entities
// whose request died mid-flight: payments stuck in processing after a
// gateway call never resolved, and notifications still pending past
// their delivery window.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dispatch-service/internal/correlation"
	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/repository"
	"dispatch-service/internal/domain/service"
)

const (
	stalePaymentReason      = "payment reconciled: gateway outcome unknown"
	staleNotificationReason = "delivery window expired"
	reconcileBatchSize      = 100
	reconcileRunTimeout     = 30 * time.Second
)

// Reconciler periodically fails stale in-flight entities and publishes
// the corresponding failure events.
type Reconciler struct {
	payments      repository.PaymentRepository
	notifications repository.NotificationRepository
	publisher     service.EventPublisher
	interval      time.Duration
	staleAfter    time.Duration
	logger        *zap.Logger
	cron          *cron.Cron
}

func NewReconciler(
	payments repository.PaymentRepository,
	notifications repository.NotificationRepository,
	publisher service.EventPublisher,
	interval, staleAfter time.Duration,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		payments:      payments,
		notifications: notifications,
		publisher:     publisher,
		interval:      interval,
		staleAfter:    staleAfter,
		logger:        logger,
	}
}

// Start schedules the reconciliation loop.
func (r *Reconciler) Start() error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc("@every "+r.interval.String(), r.run)
	if err != nil {
		return fmt.Errorf("failed to schedule reconciler: %w", err)
	}
	r.cron.Start()
	r.logger.Info("reconciler started",
		zap.Duration("interval", r.interval),
		zap.Duration("stale_after", r.staleAfter),
	)
	return nil
}

// Stop halts the schedule; a run already in progress finishes.
func (r *Reconciler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Reconciler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileRunTimeout)
	defer cancel()

	payments, err := r.ReconcilePayments(ctx)
	if err != nil {
		r.logger.Error("payment reconciliation failed", zap.Error(err))
	}
	notifications, err := r.ReconcileNotifications(ctx)
	if err != nil {
		r.logger.Error("notification reconciliation failed", zap.Error(err))
	}
	if payments > 0 || notifications > 0 {
		r.logger.Info("reconciliation pass finished",
			zap.Int("payments_failed", payments),
			zap.Int("notifications_failed", notifications),
		)
	}
}

// ReconcilePayments fails payments stuck in processing longer than the
// stale threshold and publishes payment.failed for each.
func (r *Reconciler) ReconcilePayments(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-r.staleAfter)
	stale, err := r.payments.ListStaleProcessing(ctx, cutoff, reconcileBatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, payment := range stale {
		if err := payment.MarkAsFailed(stalePaymentReason); err != nil {
			r.logger.Warn("skipping payment that left processing concurrently",
				zap.String("payment_id", payment.ID), zap.Error(err))
			continue
		}
		if err := r.payments.Update(ctx, payment); err != nil {
			r.logger.Error("failed to persist reconciled payment",
				zap.String("payment_id", payment.ID), zap.Error(err))
			continue
		}
		r.publish(ctx, "payment.failed", map[string]any{
			"payment_id": payment.ID,
			"user_id":    payment.UserID,
			"reason":     stalePaymentReason,
		})
		count++
	}
	return count, nil
}

// ReconcileNotifications fails notifications still pending past their
// delivery window and publishes notification.failed for each.
func (r *Reconciler) ReconcileNotifications(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-r.staleAfter)
	stale, err := r.notifications.ListStalePending(ctx, cutoff, reconcileBatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, notification := range stale {
		if err := notification.MarkAsFailed(staleNotificationReason); err != nil {
			r.logger.Warn("skipping notification that left pending concurrently",
				zap.String("notification_id", notification.ID), zap.Error(err))
			continue
		}
		if err := r.notifications.Update(ctx, notification); err != nil {
			r.logger.Error("failed to persist reconciled notification",
				zap.String("notification_id", notification.ID), zap.Error(err))
			continue
		}
		r.publish(ctx, "notification.failed", map[string]any{
			"notification_id": notification.ID,
			"recipient":       notification.Recipient,
			"channel":         string(notification.Channel),
			"status":          string(entity.NotificationStatusFailed),
		})
		count++
	}
	return count, nil
}

func (r *Reconciler) publish(ctx context.Context, eventType string, data map[string]any) {
	if err := r.publisher.Publish(ctx, eventType, data, correlation.From(ctx)); err != nil {
		r.logger.Warn("failed to publish reconciliation event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
