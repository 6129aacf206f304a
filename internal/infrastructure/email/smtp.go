// Package email holds the EmailService implementations: a gomail SMTP
// sender for real delivery and a mock provider for local runs.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"dispatch-service/internal/domain/service"
)

// SMTPService implements service.EmailService over SMTP.
type SMTPService struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

var _ service.EmailService = (*SMTPService)(nil)

// NewSMTPService creates an SMTP-backed email service.
func NewSMTPService(host string, port int, username, password, from string, logger *zap.Logger) *SMTPService {
	return &SMTPService{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}
}

// Send delivers one message. SMTP has no provider-side message id, so a
// local one is generated for tracking. templateID and variables are
// accepted for providers with server-side templates and ignored here;
// the body arrives already rendered.
func (s *SMTPService) Send(ctx context.Context, recipient, subject, body string, _ *string, _ map[string]any) (service.EmailResult, error) {
	// gomail dials synchronously without context support; honor
	// cancellation at least before the dial.
	select {
	case <-ctx.Done():
		return service.EmailResult{}, ctx.Err()
	default:
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return service.EmailResult{}, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := newMessageID()
	s.logger.Debug("email sent",
		zap.String("recipient", recipient),
		zap.String("message_id", messageID),
	)
	return service.EmailResult{Success: true, MessageID: messageID}, nil
}

func newMessageID() string {
	return "msg_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
