package service

import (
	"context"

	"dispatch-service/internal/domain/entity"
)

// EventPublisher publishes domain events to downstream consumers. The
// publisher builds the full event envelope (id, timestamp, source) around
// the given payload. Use cases treat publishing as fire-and-forget: a
// returned error is logged, never surfaced to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data map[string]any, correlationID string) error
}

// EmailResult is the outcome of one provider send attempt. A failed
// attempt that the provider itself reported is not an error; transport
// failures are returned as errors instead.
type EmailResult struct {
	Success   bool
	MessageID string
	Error     string
}

// EmailService sends a single email. TemplateID and variables are passed
// through for providers with server-side templates; the body is already
// rendered.
type EmailService interface {
	Send(ctx context.Context, recipient, subject, body string, templateID *string, variables map[string]any) (EmailResult, error)
}

// GatewayResult is the outcome of one charge attempt. Success=false with
// an Error means the gateway declined; transport failures are returned as
// errors instead.
type GatewayResult struct {
	Success       bool
	TransactionID string
	Error         string
}

// PaymentGateway charges a payment against an external processor.
type PaymentGateway interface {
	Process(ctx context.Context, amount entity.Money, method entity.PaymentMethod, reference *string) (GatewayResult, error)
}
