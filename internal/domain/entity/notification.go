package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Channel represents a notification delivery channel.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelPush    Channel = "push"
	ChannelWebhook Channel = "webhook"
)

// ParseChannel validates a raw channel string.
func ParseChannel(raw string) (Channel, error) {
	switch Channel(raw) {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelWebhook:
		return Channel(raw), nil
	}
	return "", NewValidationError("channel %q is not supported", raw)
}

// ValidateRecipient checks that the recipient address matches the channel:
// email addresses must contain "@", sms numbers must be digits after
// stripping "+", "-" and spaces, push and webhook targets just need to be
// non-empty.
func ValidateRecipient(recipient string, channel Channel) error {
	if strings.TrimSpace(recipient) == "" {
		return NewValidationError("recipient must not be empty")
	}
	switch channel {
	case ChannelEmail:
		if !strings.Contains(recipient, "@") {
			return NewValidationError("recipient %q is not a valid email address", recipient)
		}
	case ChannelSMS:
		digits := strings.NewReplacer("+", "", "-", "", " ", "").Replace(recipient)
		if digits == "" {
			return NewValidationError("recipient %q is not a valid phone number", recipient)
		}
		for _, r := range digits {
			if r < '0' || r > '9' {
				return NewValidationError("recipient %q is not a valid phone number", recipient)
			}
		}
	}
	return nil
}

const subjectMaxLen = 500

// RenderTemplate substitutes {key} placeholders in body from the variables
// map. Placeholders without a matching variable are left as literal text.
func RenderTemplate(body string, variables map[string]any) string {
	for key, value := range variables {
		body = strings.ReplaceAll(body, "{"+key+"}", fmt.Sprint(value))
	}
	return body
}

// NotificationStatus represents the delivery state of a notification.
type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"
	NotificationStatusSent      NotificationStatus = "sent"
	NotificationStatusDelivered NotificationStatus = "delivered"
	NotificationStatusFailed    NotificationStatus = "failed"
	NotificationStatusCancelled NotificationStatus = "cancelled"
)

// Notification represents a message to deliver over one channel. Status
// only ever moves forward: pending -> sent -> delivered, pending -> failed,
// pending -> cancelled.
type Notification struct {
	ID            string             `json:"id" db:"id"`
	Recipient     string             `json:"recipient" db:"recipient"`
	Channel       Channel            `json:"channel" db:"channel"`
	Subject       string             `json:"subject" db:"subject"`
	Body          string             `json:"body" db:"body"`
	TemplateID    *string            `json:"template_id,omitempty" db:"template_id"`
	UserID        *string            `json:"user_id,omitempty" db:"user_id"`
	Status        NotificationStatus `json:"status" db:"status"`
	ExternalID    *string            `json:"external_id,omitempty" db:"external_id"`
	FailureReason *string            `json:"failure_reason,omitempty" db:"failure_reason"`
	Metadata      map[string]any     `json:"metadata" db:"metadata"`
	SentAt        *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// NewNotification builds a validated notification in the pending state.
// The body is expected to be rendered already; see RenderTemplate.
func NewNotification(recipient string, channel Channel, subject, body string, userID, templateID *string, metadata map[string]any) (*Notification, error) {
	if _, err := ParseChannel(string(channel)); err != nil {
		return nil, err
	}
	if err := ValidateRecipient(recipient, channel); err != nil {
		return nil, err
	}
	if subject == "" || utf8.RuneCountInString(subject) > subjectMaxLen {
		return nil, NewValidationError("subject must be between 1 and %d characters", subjectMaxLen)
	}
	if body == "" {
		return nil, NewValidationError("body must not be empty")
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	now := time.Now().UTC()
	return &Notification{
		ID:         uuid.NewString(),
		Recipient:  recipient,
		Channel:    channel,
		Subject:    subject,
		Body:       body,
		TemplateID: templateID,
		UserID:     userID,
		Status:     NotificationStatusPending,
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// MarkAsSent records a successful hand-off to the provider along with the
// provider's message id.
func (n *Notification) MarkAsSent(externalID string) error {
	if n.Status != NotificationStatusPending {
		return n.transitionViolation("sent")
	}
	now := time.Now().UTC()
	n.Status = NotificationStatusSent
	n.ExternalID = &externalID
	n.SentAt = &now
	n.touch()
	return nil
}

// MarkAsFailed records a delivery failure with a reason.
func (n *Notification) MarkAsFailed(reason string) error {
	if n.Status != NotificationStatusPending {
		return n.transitionViolation("failed")
	}
	n.Status = NotificationStatusFailed
	n.FailureReason = &reason
	n.touch()
	return nil
}

// MarkAsDelivered records provider confirmation; only sent notifications
// can be confirmed.
func (n *Notification) MarkAsDelivered() error {
	if n.Status != NotificationStatusSent {
		return n.transitionViolation("delivered")
	}
	n.Status = NotificationStatusDelivered
	n.touch()
	return nil
}

// Cancel withdraws a notification that has not gone out yet. Sent and
// delivered notifications cannot be cancelled.
func (n *Notification) Cancel() error {
	if n.Status != NotificationStatusPending {
		return NewBusinessRuleViolation(
			"notification_status_transition",
			fmt.Sprintf("cannot cancel a notification in status %s", n.Status),
		)
	}
	n.Status = NotificationStatusCancelled
	n.touch()
	return nil
}

func (n *Notification) transitionViolation(target string) error {
	return NewBusinessRuleViolation(
		"notification_status_transition",
		fmt.Sprintf("cannot transition from %s to %s", n.Status, target),
	)
}

func (n *Notification) touch() {
	now := time.Now().UTC()
	if !now.After(n.UpdatedAt) {
		now = n.UpdatedAt.Add(time.Nanosecond)
	}
	n.UpdatedAt = now
}

// ToMap converts the notification to its wire shape.
func (n *Notification) ToMap() map[string]any {
	m := map[string]any{
		"id":         n.ID,
		"recipient":  n.Recipient,
		"channel":    string(n.Channel),
		"subject":    n.Subject,
		"body":       n.Body,
		"status":     string(n.Status),
		"metadata":   n.Metadata,
		"created_at": n.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": n.UpdatedAt.Format(time.RFC3339Nano),
	}
	if n.TemplateID != nil {
		m["template_id"] = *n.TemplateID
	}
	if n.UserID != nil {
		m["user_id"] = *n.UserID
	}
	if n.ExternalID != nil {
		m["external_id"] = *n.ExternalID
	}
	if n.FailureReason != nil {
		m["failure_reason"] = *n.FailureReason
	}
	if n.SentAt != nil {
		m["sent_at"] = n.SentAt.Format(time.RFC3339Nano)
	}
	return m
}

// NotificationFromMap rebuilds a notification from its wire shape.
func NotificationFromMap(m map[string]any) (*Notification, error) {
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return nil, NewValidationError("notification map is missing id")
	}
	channel, err := ParseChannel(stringValue(m, "channel"))
	if err != nil {
		return nil, err
	}
	metadata, _ := m["metadata"].(map[string]any)
	if metadata == nil {
		metadata = map[string]any{}
	}
	createdAt, err := parseMapTime(m, "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseMapTime(m, "updated_at")
	if err != nil {
		return nil, err
	}
	n := &Notification{
		ID:        id,
		Recipient: stringValue(m, "recipient"),
		Channel:   channel,
		Subject:   stringValue(m, "subject"),
		Body:      stringValue(m, "body"),
		Status:    NotificationStatus(stringValue(m, "status")),
		Metadata:  metadata,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if templateID, ok := m["template_id"].(string); ok {
		n.TemplateID = &templateID
	}
	if userID, ok := m["user_id"].(string); ok {
		n.UserID = &userID
	}
	if externalID, ok := m["external_id"].(string); ok {
		n.ExternalID = &externalID
	}
	if reason, ok := m["failure_reason"].(string); ok {
		n.FailureReason = &reason
	}
	if raw, ok := m["sent_at"].(string); ok {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, NewValidationError("sent_at is not a valid timestamp: %v", err)
		}
		t = t.UTC()
		n.SentAt = &t
	}
	return n, nil
}
