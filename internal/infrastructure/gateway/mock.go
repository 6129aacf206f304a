package gateway

import (
	"context"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/service"
)

// MockGateway approves most charges and declines a configurable share,
// mimicking a processor for local runs.
type MockGateway struct {
	declineRate float64
}

var _ service.PaymentGateway = (*MockGateway)(nil)

// NewMockGateway creates a mock processor; declineRate is the probability
// in [0, 1] that a charge is declined.
func NewMockGateway(declineRate float64) *MockGateway {
	return &MockGateway{declineRate: declineRate}
}

func (g *MockGateway) Process(_ context.Context, _ entity.Money, _ entity.PaymentMethod, _ *string) (service.GatewayResult, error) {
	if rand.Float64() < g.declineRate {
		return service.GatewayResult{Success: false, Error: "Insufficient funds"}, nil
	}
	return service.GatewayResult{Success: true, TransactionID: newTransactionID()}, nil
}

func newTransactionID() string {
	return "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
