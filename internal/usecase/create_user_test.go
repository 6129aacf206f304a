package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/correlation"
	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/service"
)

func newCreateUserUseCase(users *stubUserRepo, notifications *stubNotificationRepo, publisher *stubPublisher) *CreateUserUseCase {
	return NewCreateUserUseCase(users, service.NewUserDomainService(users), notifications, publisher, zap.NewNop())
}

func TestCreateUserSuccess(t *testing.T) {
	var createdUser *entity.User
	users := &stubUserRepo{
		createFn: func(_ context.Context, user *entity.User) error {
			createdUser = user
			return nil
		},
	}
	var welcome *entity.Notification
	notifications := &stubNotificationRepo{
		createFn: func(_ context.Context, notification *entity.Notification) error {
			welcome = notification
			return nil
		},
	}
	publisher := &stubPublisher{}
	uc := newCreateUserUseCase(users, notifications, publisher)

	ctx := correlation.With(context.Background(), "corr-1")
	result, err := uc.Execute(ctx, command.CreateUserCommand{
		Name:  "John Doe",
		Email: "john@example.com",
		Age:   intPtr(30),
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if result["email"] != "john@example.com" {
		t.Errorf("expected result email john@example.com, got %v", result["email"])
	}
	if result["name"] != "John Doe" {
		t.Errorf("expected result name John Doe, got %v", result["name"])
	}
	if createdUser == nil {
		t.Fatal("user was not persisted")
	}

	if welcome == nil {
		t.Fatal("welcome notification was not persisted")
	}
	if welcome.Metadata["type"] != "welcome" {
		t.Errorf("expected welcome metadata type, got %v", welcome.Metadata)
	}
	if welcome.Recipient != "john@example.com" || welcome.Channel != entity.ChannelEmail {
		t.Errorf("unexpected welcome target: %s via %s", welcome.Recipient, welcome.Channel)
	}
	if welcome.Body != "Hello John Doe, welcome to our platform!" {
		t.Errorf("welcome body not rendered: %q", welcome.Body)
	}
	if welcome.UserID == nil || *welcome.UserID != createdUser.ID {
		t.Errorf("welcome notification not linked to user: %v", welcome.UserID)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.events))
	}
	event := publisher.last()
	if event.eventType != "user.created" {
		t.Errorf("expected user.created, got %s", event.eventType)
	}
	if event.data["user_id"] != createdUser.ID {
		t.Errorf("event user_id mismatch: %v != %s", event.data["user_id"], createdUser.ID)
	}
	if event.correlationID != "corr-1" {
		t.Errorf("correlation id not threaded into event, got %q", event.correlationID)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	createCalls := 0
	users := &stubUserRepo{
		existsByEmailFn: func(context.Context, string) (bool, error) { return true, nil },
		createFn: func(context.Context, *entity.User) error {
			createCalls++
			return nil
		},
	}
	publisher := &stubPublisher{}
	uc := newCreateUserUseCase(users, &stubNotificationRepo{}, publisher)

	_, err := uc.Execute(context.Background(), command.CreateUserCommand{
		Name:  "John Doe",
		Email: "john@example.com",
	})
	wantDomainCode(t, err, entity.CodeAlreadyExists)
	if msg := err.Error(); msg != "User with email=john@example.com already exists" {
		t.Errorf("unexpected message: %q", msg)
	}
	if createCalls != 0 {
		t.Error("duplicate email must not reach the repository")
	}
	if len(publisher.events) != 0 {
		t.Error("no event must be published for a rejected create")
	}
}

func TestCreateUserInvalidInput(t *testing.T) {
	uniquenessChecks := 0
	users := &stubUserRepo{
		existsByEmailFn: func(context.Context, string) (bool, error) {
			uniquenessChecks++
			return false, nil
		},
	}
	uc := newCreateUserUseCase(users, &stubNotificationRepo{}, &stubPublisher{})

	_, err := uc.Execute(context.Background(), command.CreateUserCommand{
		Name:  "John Doe",
		Email: "not-an-email",
	})
	wantDomainCode(t, err, entity.CodeValidationError)
	if uniquenessChecks != 0 {
		t.Error("validation must fail before the uniqueness check")
	}
}

func TestCreateUserWelcomeFailureDoesNotFailCreate(t *testing.T) {
	users := &stubUserRepo{}
	notifications := &stubNotificationRepo{
		createFn: func(context.Context, *entity.Notification) error {
			return errors.New("notification store down")
		},
	}
	publisher := &stubPublisher{}
	uc := newCreateUserUseCase(users, notifications, publisher)

	result, err := uc.Execute(context.Background(), command.CreateUserCommand{
		Name:  "John Doe",
		Email: "john@example.com",
	})
	if err != nil {
		t.Fatalf("welcome failure must not fail the create: %v", err)
	}
	if result["email"] != "john@example.com" {
		t.Errorf("unexpected result: %v", result)
	}
	if event := publisher.last(); event.eventType != "user.created" {
		t.Errorf("user.created must still be published, got %q", event.eventType)
	}
}

func TestCreateUserPublishFailureDoesNotFailCreate(t *testing.T) {
	publisher := &stubPublisher{err: errors.New("broker unreachable")}
	uc := newCreateUserUseCase(&stubUserRepo{}, &stubNotificationRepo{}, publisher)

	_, err := uc.Execute(context.Background(), command.CreateUserCommand{
		Name:  "John Doe",
		Email: "john@example.com",
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the create: %v", err)
	}
}

func TestCreateUserRepositoryFailure(t *testing.T) {
	users := &stubUserRepo{
		createFn: func(context.Context, *entity.User) error {
			return errors.New("pq: connection refused")
		},
	}
	uc := newCreateUserUseCase(users, &stubNotificationRepo{}, &stubPublisher{})

	_, err := uc.Execute(context.Background(), command.CreateUserCommand{
		Name:  "John Doe",
		Email: "john@example.com",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := entity.AsDomainError(err); ok {
		t.Errorf("infrastructure failure must not be a domain error: %v", err)
	}
}
