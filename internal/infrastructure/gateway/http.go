// Package gateway holds the PaymentGateway implementations: an HTTP
// client against an external processor and a mock for local runs.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/service"
)

// HTTPGateway implements service.PaymentGateway against a remote
// processor's charge endpoint.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ service.PaymentGateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a gateway client with a hard request timeout.
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type chargeRequest struct {
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"payment_method"`
	Reference     *string `json:"reference,omitempty"`
}

type chargeResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Error         string `json:"error"`
}

// Process submits one charge. A declined charge is a normal result; a
// transport failure or a 5xx from the processor is an error.
func (g *HTTPGateway) Process(ctx context.Context, amount entity.Money, method entity.PaymentMethod, reference *string) (service.GatewayResult, error) {
	payload, err := json.Marshal(chargeRequest{
		Amount:        amount.Amount.String(),
		Currency:      amount.Currency,
		PaymentMethod: string(method),
		Reference:     reference,
	})
	if err != nil {
		return service.GatewayResult{}, fmt.Errorf("failed to encode charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(payload))
	if err != nil {
		return service.GatewayResult{}, fmt.Errorf("failed to build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return service.GatewayResult{}, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return service.GatewayResult{}, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return service.GatewayResult{}, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return service.GatewayResult{
		Success:       out.Success,
		TransactionID: out.TransactionID,
		Error:         out.Error,
	}, nil
}
