package command

import (
	"encoding/json"
	"strings"
	"testing"

	"dispatch-service/internal/domain/entity"
)

func wantValidationError(t *testing.T, err error, contains string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error containing %q, got nil", contains)
	}
	de, ok := entity.AsDomainError(err)
	if !ok {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if de.Code != entity.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR, got %s", de.Code)
	}
	if !strings.Contains(de.Message, contains) {
		t.Fatalf("expected message containing %q, got %q", contains, de.Message)
	}
}

func TestCreateUserCommandFromMap(t *testing.T) {
	cmd, err := CreateUserCommandFromMap(map[string]any{
		"name":     "Alice",
		"email":    "a@example.com",
		"age":      float64(30),
		"metadata": map[string]any{"tier": "gold"},
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cmd.Name != "Alice" || cmd.Email != "a@example.com" {
		t.Errorf("unexpected command: %+v", cmd)
	}
	if cmd.Age == nil || *cmd.Age != 30 {
		t.Errorf("expected age 30, got %v", cmd.Age)
	}
	if cmd.Metadata["tier"] != "gold" {
		t.Errorf("unexpected metadata: %v", cmd.Metadata)
	}

	// Minimal payload: optional fields absent.
	cmd, err = CreateUserCommandFromMap(map[string]any{"name": "Bob", "email": "b@example.com"})
	if err != nil {
		t.Fatalf("minimal decode failed: %v", err)
	}
	if cmd.Age != nil || cmd.Metadata != nil {
		t.Errorf("expected nil optionals, got %+v", cmd)
	}
}

func TestCreateUserCommandRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]any
		contains string
	}{
		{"missing name", map[string]any{"email": "a@example.com"}, "name is required"},
		{"empty email", map[string]any{"name": "Alice", "email": ""}, "email must not be empty"},
		{"name wrong type", map[string]any{"name": 7, "email": "a@example.com"}, "name must be a string"},
		{"fractional age", map[string]any{"name": "Alice", "email": "a@example.com", "age": 30.5}, "age must be an integer"},
		{"age wrong type", map[string]any{"name": "Alice", "email": "a@example.com", "age": "thirty"}, "age must be an integer"},
		{"metadata wrong type", map[string]any{"name": "Alice", "email": "a@example.com", "metadata": "x"}, "metadata must be an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateUserCommandFromMap(tt.payload)
			wantValidationError(t, err, tt.contains)
		})
	}
}

func TestUnknownFieldsAreListedSorted(t *testing.T) {
	_, err := CreateUserCommandFromMap(map[string]any{
		"name":    "Alice",
		"email":   "a@example.com",
		"zzz":     1,
		"aaa":     2,
		"surname": "Smith",
	})
	wantValidationError(t, err, "unknown fields: aaa, surname, zzz")
}

func TestUpdateUserCommandFromMap(t *testing.T) {
	cmd, err := UpdateUserCommandFromMap(map[string]any{
		"user_id": "u-1",
		"age":     json.Number("44"),
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cmd.UserID != "u-1" {
		t.Errorf("unexpected user id %q", cmd.UserID)
	}
	if cmd.Name != nil {
		t.Error("expected nil name for partial update")
	}
	if cmd.Age == nil || *cmd.Age != 44 {
		t.Errorf("expected age 44, got %v", cmd.Age)
	}

	_, err = UpdateUserCommandFromMap(map[string]any{"name": "Alice"})
	wantValidationError(t, err, "user_id is required")
}

func TestDeleteUserCommandFromMap(t *testing.T) {
	cmd, err := DeleteUserCommandFromMap(map[string]any{"user_id": "u-1"})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cmd.UserID != "u-1" {
		t.Errorf("unexpected user id %q", cmd.UserID)
	}

	_, err = DeleteUserCommandFromMap(map[string]any{"user_id": "u-1", "force": true})
	wantValidationError(t, err, "unknown fields: force")
}

func TestProcessPaymentCommandAmountForms(t *testing.T) {
	tests := []struct {
		name   string
		amount any
		want   string
	}{
		{"decimal string", "99.99", "99.99"},
		{"json float", float64(49.5), "49.5"},
		{"whole float", float64(100), "100"},
		{"json number", json.Number("12.34"), "12.34"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ProcessPaymentCommandFromMap(map[string]any{
				"user_id":        "u-1",
				"amount":         tt.amount,
				"currency":       "USD",
				"payment_method": "credit_card",
			})
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if cmd.Amount != tt.want {
				t.Errorf("expected amount %q, got %q", tt.want, cmd.Amount)
			}
		})
	}

	_, err := ProcessPaymentCommandFromMap(map[string]any{
		"user_id":        "u-1",
		"amount":         true,
		"currency":       "USD",
		"payment_method": "credit_card",
	})
	wantValidationError(t, err, "amount must be a decimal string or number")

	_, err = ProcessPaymentCommandFromMap(map[string]any{
		"user_id":        "u-1",
		"currency":       "USD",
		"payment_method": "credit_card",
	})
	wantValidationError(t, err, "amount is required")
}

func TestRefundPaymentCommandFromMap(t *testing.T) {
	cmd, err := RefundPaymentCommandFromMap(map[string]any{
		"payment_id": "p-1",
		"reason":     "customer request",
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cmd.PaymentID != "p-1" {
		t.Errorf("unexpected payment id %q", cmd.PaymentID)
	}
	if cmd.Reason == nil || *cmd.Reason != "customer request" {
		t.Errorf("unexpected reason %v", cmd.Reason)
	}

	_, err = RefundPaymentCommandFromMap(map[string]any{"reason": "x"})
	wantValidationError(t, err, "payment_id is required")
}

func TestSendNotificationCommandFromMap(t *testing.T) {
	cmd, err := SendNotificationCommandFromMap(map[string]any{
		"recipient": "a@example.com",
		"channel":   "email",
		"subject":   "Hi",
		"body":      "Hello {name}",
		"variables": map[string]any{"name": "Alice"},
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cmd.Variables["name"] != "Alice" {
		t.Errorf("unexpected variables: %v", cmd.Variables)
	}
	if cmd.UserID != nil || cmd.TemplateID != nil {
		t.Errorf("expected nil optionals, got %+v", cmd)
	}

	_, err = SendNotificationCommandFromMap(map[string]any{
		"recipient": "a@example.com",
		"channel":   "email",
		"body":      "Hello",
	})
	wantValidationError(t, err, "subject is required")
}
