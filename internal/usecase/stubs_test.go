package usecase

import (
	"context"
	"fmt"
	"time"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/service"
)

// Function-field stubs: configure only what a test needs. Unconfigured
// reads fail loudly, unconfigured writes succeed silently.

type stubUserRepo struct {
	createFn        func(ctx context.Context, user *entity.User) error
	getByIDFn       func(ctx context.Context, id string) (*entity.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*entity.User, error)
	existsByEmailFn func(ctx context.Context, email string) (bool, error)
	updateFn        func(ctx context.Context, user *entity.User) error
	deleteFn        func(ctx context.Context, id string) error
}

func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("getByIDFn not configured")
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, fmt.Errorf("getByEmailFn not configured")
}

func (s *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if s.existsByEmailFn != nil {
		return s.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (s *stubUserRepo) Update(ctx context.Context, user *entity.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type stubPaymentRepo struct {
	createFn func(ctx context.Context, payment *entity.Payment) error
	getFn    func(ctx context.Context, id string) (*entity.Payment, error)
	updateFn func(ctx context.Context, payment *entity.Payment) error
}

func (s *stubPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	if s.createFn != nil {
		return s.createFn(ctx, payment)
	}
	return nil
}

func (s *stubPaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, fmt.Errorf("getFn not configured")
}

func (s *stubPaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	return nil, fmt.Errorf("GetByTransactionID not configured")
}

func (s *stubPaymentRepo) Update(ctx context.Context, payment *entity.Payment) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, payment)
	}
	return nil
}

func (s *stubPaymentRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Payment, error) {
	return nil, fmt.Errorf("ListByUser not configured")
}

func (s *stubPaymentRepo) ListStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Payment, error) {
	return nil, fmt.Errorf("ListStaleProcessing not configured")
}

type stubNotificationRepo struct {
	createFn func(ctx context.Context, notification *entity.Notification) error
	updateFn func(ctx context.Context, notification *entity.Notification) error
}

func (s *stubNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	if s.createFn != nil {
		return s.createFn(ctx, notification)
	}
	return nil
}

func (s *stubNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	return nil, fmt.Errorf("GetByID not configured")
}

func (s *stubNotificationRepo) Update(ctx context.Context, notification *entity.Notification) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, notification)
	}
	return nil
}

func (s *stubNotificationRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Notification, error) {
	return nil, fmt.Errorf("ListStalePending not configured")
}

type publishedEvent struct {
	eventType     string
	data          map[string]any
	correlationID string
}

// stubPublisher records every published event.
type stubPublisher struct {
	events []publishedEvent
	err    error
}

func (s *stubPublisher) Publish(_ context.Context, eventType string, data map[string]any, correlationID string) error {
	s.events = append(s.events, publishedEvent{eventType: eventType, data: data, correlationID: correlationID})
	return s.err
}

func (s *stubPublisher) last() publishedEvent {
	if len(s.events) == 0 {
		return publishedEvent{}
	}
	return s.events[len(s.events)-1]
}

type stubEmailService struct {
	sendFn func(ctx context.Context, recipient, subject, body string, templateID *string, variables map[string]any) (service.EmailResult, error)
}

func (s *stubEmailService) Send(ctx context.Context, recipient, subject, body string, templateID *string, variables map[string]any) (service.EmailResult, error) {
	if s.sendFn != nil {
		return s.sendFn(ctx, recipient, subject, body, templateID, variables)
	}
	return service.EmailResult{}, fmt.Errorf("sendFn not configured")
}

type stubGateway struct {
	processFn func(ctx context.Context, amount entity.Money, method entity.PaymentMethod, reference *string) (service.GatewayResult, error)
}

func (s *stubGateway) Process(ctx context.Context, amount entity.Money, method entity.PaymentMethod, reference *string) (service.GatewayResult, error) {
	if s.processFn != nil {
		return s.processFn(ctx, amount, method, reference)
	}
	return service.GatewayResult{}, fmt.Errorf("processFn not configured")
}

func wantDomainCode(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	de, ok := entity.AsDomainError(err)
	if !ok {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if de.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, de.Code, de.Message)
	}
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
