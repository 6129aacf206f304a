package entity

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func newTestNotification(t *testing.T) *Notification {
	t.Helper()
	n, err := NewNotification("a@example.com", ChannelEmail, "Hi", "Hello there", strPtr("user-1"), nil, nil)
	if err != nil {
		t.Fatalf("new notification: %v", err)
	}
	return n
}

func TestParseChannel(t *testing.T) {
	for _, raw := range []string{"email", "sms", "push", "webhook"} {
		if _, err := ParseChannel(raw); err != nil {
			t.Errorf("%s should parse: %v", raw, err)
		}
	}
	_, err := ParseChannel("carrier_pigeon")
	wantDomainCode(t, err, CodeValidationError)
}

func TestValidateRecipient(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		channel   Channel
		wantErr   bool
	}{
		{"email ok", "a@example.com", ChannelEmail, false},
		{"email missing at", "a.example.com", ChannelEmail, true},
		{"sms ok", "+1-555 0100", ChannelSMS, false},
		{"sms with letters", "+1-555-CALL", ChannelSMS, true},
		{"sms only separators", "+- ", ChannelSMS, true},
		{"push token ok", "device-token-1", ChannelPush, false},
		{"webhook ok", "https://example.com/hook", ChannelWebhook, false},
		{"empty recipient", "  ", ChannelPush, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecipient(tt.recipient, tt.channel)
			if tt.wantErr {
				wantDomainCode(t, err, CodeValidationError)
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	body := RenderTemplate("Hello {name}, your code is {code}. Bye {name}!", map[string]any{
		"name": "Alice",
		"code": 1234,
	})
	if body != "Hello Alice, your code is 1234. Bye Alice!" {
		t.Errorf("unexpected rendering: %q", body)
	}

	// Unknown placeholders stay literal; nil variables render nothing.
	if got := RenderTemplate("Hi {who}", nil); got != "Hi {who}" {
		t.Errorf("expected literal placeholder, got %q", got)
	}
	if got := RenderTemplate("Hi {name}", map[string]any{"other": "x"}); got != "Hi {name}" {
		t.Errorf("expected literal placeholder, got %q", got)
	}
}

func TestNewNotificationValidation(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		channel   Channel
		subject   string
		body      string
	}{
		{"bad channel", "a@example.com", Channel("fax"), "Hi", "Hello"},
		{"bad recipient for channel", "not-an-email", ChannelEmail, "Hi", "Hello"},
		{"empty subject", "a@example.com", ChannelEmail, "", "Hello"},
		{"subject too long", "a@example.com", ChannelEmail, strings.Repeat("s", 501), "Hello"},
		{"empty body", "a@example.com", ChannelEmail, "Hi", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNotification(tt.recipient, tt.channel, tt.subject, tt.body, nil, nil, nil)
			wantDomainCode(t, err, CodeValidationError)
		})
	}
}

func TestNotificationSubjectLengthCountsRunes(t *testing.T) {
	// 500 multibyte runes sit on the limit despite the larger byte length.
	subject := strings.Repeat("ü", 500)
	if _, err := NewNotification("a@example.com", ChannelEmail, subject, "Hello", nil, nil, nil); err != nil {
		t.Fatalf("500-rune subject must be accepted: %v", err)
	}

	_, err := NewNotification("a@example.com", ChannelEmail, strings.Repeat("ü", 501), "Hello", nil, nil, nil)
	wantDomainCode(t, err, CodeValidationError)
}

func TestNotificationSentFlow(t *testing.T) {
	n := newTestNotification(t)

	if err := n.MarkAsSent("msg_abc12345"); err != nil {
		t.Fatalf("pending -> sent: %v", err)
	}
	if n.ExternalID == nil || *n.ExternalID != "msg_abc12345" {
		t.Errorf("expected external id recorded, got %v", n.ExternalID)
	}
	if n.SentAt == nil {
		t.Error("expected sent_at set")
	}

	if err := n.MarkAsDelivered(); err != nil {
		t.Fatalf("sent -> delivered: %v", err)
	}
	if n.Status != NotificationStatusDelivered {
		t.Errorf("expected delivered, got %s", n.Status)
	}
}

func TestNotificationInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Notification)
		op    func(*Notification) error
		want  NotificationStatus
	}{
		{
			"sent cannot be sent again",
			func(n *Notification) { n.MarkAsSent("msg_1") },
			func(n *Notification) error { return n.MarkAsSent("msg_2") },
			NotificationStatusSent,
		},
		{
			"sent cannot fail",
			func(n *Notification) { n.MarkAsSent("msg_1") },
			func(n *Notification) error { return n.MarkAsFailed("late") },
			NotificationStatusSent,
		},
		{
			"pending cannot be delivered",
			func(n *Notification) {},
			func(n *Notification) error { return n.MarkAsDelivered() },
			NotificationStatusPending,
		},
		{
			"sent cannot be cancelled",
			func(n *Notification) { n.MarkAsSent("msg_1") },
			func(n *Notification) error { return n.Cancel() },
			NotificationStatusSent,
		},
		{
			"cancelled cannot be sent",
			func(n *Notification) { n.Cancel() },
			func(n *Notification) error { return n.MarkAsSent("msg_1") },
			NotificationStatusCancelled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNotification(t)
			tt.setup(n)
			err := tt.op(n)
			wantDomainCode(t, err, CodeBusinessRuleViolation)
			if n.Status != tt.want {
				t.Errorf("status changed on invalid transition: got %s, want %s", n.Status, tt.want)
			}
		})
	}
}

func TestNotificationCancel(t *testing.T) {
	n := newTestNotification(t)
	if err := n.Cancel(); err != nil {
		t.Fatalf("pending -> cancelled: %v", err)
	}
	if n.Status != NotificationStatusCancelled {
		t.Errorf("expected cancelled, got %s", n.Status)
	}
}

func TestNotificationMapRoundTrip(t *testing.T) {
	n, err := NewNotification("a@example.com", ChannelEmail, "Hi", "Hello Alice", strPtr("user-1"), strPtr("tmpl-1"), map[string]any{"type": "welcome"})
	if err != nil {
		t.Fatalf("new notification: %v", err)
	}
	n.MarkAsSent("msg_xyz")

	got, err := NotificationFromMap(n.ToMap())
	if err != nil {
		t.Fatalf("from map failed: %v", err)
	}
	if got.ID != n.ID || got.Status != NotificationStatusSent || got.Body != "Hello Alice" {
		t.Errorf("fields changed in round trip: %+v", got)
	}
	if got.UserID == nil || *got.UserID != "user-1" {
		t.Errorf("user id lost in round trip: %v", got.UserID)
	}
	if got.TemplateID == nil || *got.TemplateID != "tmpl-1" {
		t.Errorf("template id lost in round trip: %v", got.TemplateID)
	}
	if got.SentAt == nil || !got.SentAt.Equal(*n.SentAt) {
		t.Error("sent_at changed in round trip")
	}
	if got.Metadata["type"] != "welcome" {
		t.Errorf("metadata changed in round trip: %v", got.Metadata)
	}
}
