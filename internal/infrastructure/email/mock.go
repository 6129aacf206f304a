package email

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"dispatch-service/internal/domain/service"
)

// MockService simulates an email provider for local runs. A configurable
// share of sends is rejected so failure paths stay exercised.
type MockService struct {
	failureRate float64
	logger      *zap.Logger
}

var _ service.EmailService = (*MockService)(nil)

// NewMockService creates a mock provider; failureRate is the probability
// in [0, 1] that a send is rejected.
func NewMockService(failureRate float64, logger *zap.Logger) *MockService {
	return &MockService{failureRate: failureRate, logger: logger}
}

func (s *MockService) Send(_ context.Context, recipient, subject, _ string, _ *string, _ map[string]any) (service.EmailResult, error) {
	if rand.Float64() < s.failureRate {
		s.logger.Info("mock email rejected", zap.String("recipient", recipient))
		return service.EmailResult{Success: false, Error: "mock provider rejected the message"}, nil
	}
	messageID := newMessageID()
	s.logger.Info("mock email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("message_id", messageID),
	)
	return service.EmailResult{Success: true, MessageID: messageID}, nil
}
