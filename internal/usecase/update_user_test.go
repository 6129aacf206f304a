package usecase

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"dispatch-service/internal/command"
	"dispatch-service/internal/domain/entity"
)

func existingUser(t *testing.T) *entity.User {
	t.Helper()
	user, err := entity.NewUser("John Doe", "john@example.com", intPtr(30), nil)
	if err != nil {
		t.Fatalf("test user: %v", err)
	}
	return user
}

func TestUpdateUserMetadataOnly(t *testing.T) {
	user := existingUser(t)
	var persisted *entity.User
	users := &stubUserRepo{
		getByIDFn: func(_ context.Context, id string) (*entity.User, error) {
			if id != user.ID {
				return nil, entity.NewNotFoundError("User", id)
			}
			return user, nil
		},
		updateFn: func(_ context.Context, u *entity.User) error {
			persisted = u
			return nil
		},
	}
	publisher := &stubPublisher{}
	uc := NewUpdateUserUseCase(users, publisher, zap.NewNop())

	result, err := uc.Execute(context.Background(), command.UpdateUserCommand{
		UserID:   user.ID,
		Metadata: map[string]any{"dept": "eng"},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if result["name"] != "John Doe" {
		t.Errorf("name must be unchanged, got %v", result["name"])
	}
	if result["age"] != 30 {
		t.Errorf("age must be unchanged, got %v", result["age"])
	}
	if persisted == nil || persisted.Metadata["dept"] != "eng" {
		t.Errorf("metadata change not persisted: %+v", persisted)
	}

	event := publisher.last()
	if event.eventType != "user.updated" {
		t.Fatalf("expected user.updated, got %q", event.eventType)
	}
	changes, ok := event.data["changes"].(map[string]any)
	if !ok {
		t.Fatalf("expected changes map, got %v", event.data["changes"])
	}
	if _, present := changes["name"]; present {
		t.Error("unchanged name must not appear in changes")
	}
	if _, present := changes["age"]; present {
		t.Error("unchanged age must not appear in changes")
	}
	if _, present := changes["metadata"]; !present {
		t.Error("changed metadata must appear in changes")
	}
}

func TestUpdateUserNameAndAge(t *testing.T) {
	user := existingUser(t)
	before := user.UpdatedAt
	users := &stubUserRepo{
		getByIDFn: func(context.Context, string) (*entity.User, error) { return user, nil },
	}
	publisher := &stubPublisher{}
	uc := NewUpdateUserUseCase(users, publisher, zap.NewNop())

	result, err := uc.Execute(context.Background(), command.UpdateUserCommand{
		UserID: user.ID,
		Name:   strPtr("Johnny Doe"),
		Age:    intPtr(31),
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if result["name"] != "Johnny Doe" {
		t.Errorf("expected updated name, got %v", result["name"])
	}
	if !user.UpdatedAt.After(before) {
		t.Error("updated_at did not advance")
	}

	changes := publisher.last().data["changes"].(map[string]any)
	if changes["name"] != "Johnny Doe" {
		t.Errorf("expected name in changes, got %v", changes)
	}
	if changes["age"] != 31 {
		t.Errorf("expected age in changes, got %v", changes)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	users := &stubUserRepo{
		getByIDFn: func(_ context.Context, id string) (*entity.User, error) {
			return nil, entity.NewNotFoundError("User", id)
		},
	}
	publisher := &stubPublisher{}
	uc := NewUpdateUserUseCase(users, publisher, zap.NewNop())

	_, err := uc.Execute(context.Background(), command.UpdateUserCommand{UserID: "ghost"})
	wantDomainCode(t, err, entity.CodeNotFound)
	if len(publisher.events) != 0 {
		t.Error("no event must be published for a failed update")
	}
}

func TestUpdateUserInvalidNameNotPersisted(t *testing.T) {
	user := existingUser(t)
	updates := 0
	users := &stubUserRepo{
		getByIDFn: func(context.Context, string) (*entity.User, error) { return user, nil },
		updateFn: func(context.Context, *entity.User) error {
			updates++
			return nil
		},
	}
	uc := NewUpdateUserUseCase(users, &stubPublisher{}, zap.NewNop())

	_, err := uc.Execute(context.Background(), command.UpdateUserCommand{
		UserID: user.ID,
		Name:   strPtr("   "),
	})
	wantDomainCode(t, err, entity.CodeValidationError)
	if updates != 0 {
		t.Error("invalid update must not be persisted")
	}
}
