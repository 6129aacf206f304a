package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"dispatch-service/internal/app"
	"dispatch-service/internal/infrastructure/email"
	"dispatch-service/internal/infrastructure/events"
	"dispatch-service/internal/infrastructure/gateway"
	"dispatch-service/internal/infrastructure/memory"
	transporthttp "dispatch-service/internal/transport/http"
)

type apiResponse struct {
	Success         bool           `json:"success"`
	Data            map[string]any `json:"data"`
	ErrorCode       string         `json:"error_code"`
	Message         string         `json:"message"`
	ExecutionTimeMS float64        `json:"execution_time_ms"`
	Timestamp       string         `json:"timestamp"`
}

// newTestServer serves the full middleware and routing stack over
// in-memory storage with deterministic providers.
func newTestServer(t *testing.T, ready transporthttp.ReadinessCheck) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()

	application := app.NewApplication(logger, app.Ports{
		Users:         memory.NewUserRepository(),
		Payments:      memory.NewPaymentRepository(),
		Notifications: memory.NewNotificationRepository(),
		Publisher:     events.NewPublisher(events.NewLogWriter(logger), nil, logger),
		Email:         email.NewMockService(0, logger),
		Gateway:       gateway.NewMockGateway(0),
	})

	router := transporthttp.NewRouter(application, ready, "dispatch-service", "test", logger)
	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body map[string]any) (*http.Response, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func createUser(t *testing.T, server *httptest.Server, email string) map[string]any {
	t.Helper()
	resp, out := doJSON(t, http.MethodPost, server.URL+"/users/", map[string]any{
		"name":  "John Doe",
		"email": email,
		"age":   30,
	})
	if resp.StatusCode != http.StatusCreated || !out.Success {
		t.Fatalf("create user: status %d, %+v", resp.StatusCode, out)
	}
	return out.Data
}

func TestCreateUserEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp, out := doJSON(t, http.MethodPost, server.URL+"/users/", map[string]any{
		"name":  "John Doe",
		"email": "john@example.com",
		"age":   30,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if !out.Success || out.Data["email"] != "john@example.com" {
		t.Errorf("unexpected body: %+v", out)
	}
	if out.ExecutionTimeMS < 0 {
		t.Errorf("execution time missing: %v", out.ExecutionTimeMS)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestCreateUserDuplicateEmailConflict(t *testing.T) {
	server := newTestServer(t, nil)
	createUser(t, server, "john@example.com")

	resp, out := doJSON(t, http.MethodPost, server.URL+"/users/", map[string]any{
		"name":  "Imposter",
		"email": "john@example.com",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if out.Success || out.ErrorCode != "ALREADY_EXISTS" {
		t.Errorf("unexpected body: %+v", out)
	}
}

func TestCreateUserInvalidBody(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Post(server.URL+"/users/", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestUpdateUserPartialUpdate(t *testing.T) {
	server := newTestServer(t, nil)
	user := createUser(t, server, "john@example.com")

	resp, out := doJSON(t, http.MethodPut, fmt.Sprintf("%s/users/%s", server.URL, user["id"]), map[string]any{
		"metadata": map[string]any{"dept": "eng"},
	})
	if resp.StatusCode != http.StatusOK || !out.Success {
		t.Fatalf("status %d, %+v", resp.StatusCode, out)
	}
	if out.Data["name"] != "John Doe" {
		t.Errorf("name must be unchanged: %v", out.Data["name"])
	}
	if age, ok := out.Data["age"].(float64); !ok || age != 30 {
		t.Errorf("age must be unchanged: %v", out.Data["age"])
	}
	metadata, _ := out.Data["metadata"].(map[string]any)
	if metadata["dept"] != "eng" {
		t.Errorf("metadata not applied: %v", out.Data["metadata"])
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	server := newTestServer(t, nil)

	resp, out := doJSON(t, http.MethodPut, server.URL+"/users/ghost", map[string]any{
		"name": "Nobody",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if out.ErrorCode != "NOT_FOUND" {
		t.Errorf("unexpected code: %q", out.ErrorCode)
	}
}

func TestDeleteUserEndpoint(t *testing.T) {
	server := newTestServer(t, nil)
	user := createUser(t, server, "john@example.com")

	resp, out := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/users/%s", server.URL, user["id"]), nil)
	if resp.StatusCode != http.StatusOK || !out.Success {
		t.Fatalf("status %d, %+v", resp.StatusCode, out)
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/users/%s", server.URL, user["id"]), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status: %d", resp.StatusCode)
	}
}

func TestProcessPaymentEndpoint(t *testing.T) {
	server := newTestServer(t, nil)
	user := createUser(t, server, "payer@example.com")

	resp, out := doJSON(t, http.MethodPost, server.URL+"/payments/", map[string]any{
		"user_id":        user["id"],
		"amount":         "99.99",
		"currency":       "USD",
		"payment_method": "credit_card",
	})
	if resp.StatusCode != http.StatusCreated || !out.Success {
		t.Fatalf("status %d, %+v", resp.StatusCode, out)
	}
	if out.Data["status"] != "completed" {
		t.Errorf("payment status: %v", out.Data["status"])
	}
	if out.Data["transaction_id"] == nil {
		t.Error("transaction id missing")
	}
}

func TestProcessPaymentGhostUser(t *testing.T) {
	server := newTestServer(t, nil)

	resp, out := doJSON(t, http.MethodPost, server.URL+"/payments/", map[string]any{
		"user_id":        "ghost",
		"amount":         "99.99",
		"currency":       "USD",
		"payment_method": "credit_card",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if out.ErrorCode != "NOT_FOUND" {
		t.Errorf("unexpected code: %q", out.ErrorCode)
	}
}

func TestRefundPaymentEndpoint(t *testing.T) {
	server := newTestServer(t, nil)
	user := createUser(t, server, "payer@example.com")

	_, paid := doJSON(t, http.MethodPost, server.URL+"/payments/", map[string]any{
		"user_id":        user["id"],
		"amount":         "15.00",
		"currency":       "USD",
		"payment_method": "debit_card",
	})
	paymentID, _ := paid.Data["id"].(string)
	if paymentID == "" {
		t.Fatalf("no payment id: %+v", paid)
	}

	resp, out := doJSON(t, http.MethodPost, fmt.Sprintf("%s/payments/%s/refund", server.URL, paymentID), map[string]any{
		"reason": "customer request",
	})
	if resp.StatusCode != http.StatusOK || out.Data["status"] != "refunded" {
		t.Fatalf("status %d, %+v", resp.StatusCode, out)
	}

	// A second refund violates the payment state machine.
	resp, out = doJSON(t, http.MethodPost, fmt.Sprintf("%s/payments/%s/refund", server.URL, paymentID), nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("second refund status: %d", resp.StatusCode)
	}
	if out.ErrorCode != "BUSINESS_RULE_VIOLATION" {
		t.Errorf("unexpected code: %q", out.ErrorCode)
	}
}

func TestSendNotificationSMSNotImplemented(t *testing.T) {
	server := newTestServer(t, nil)

	resp, out := doJSON(t, http.MethodPost, server.URL+"/notifications/", map[string]any{
		"recipient": "+1 555-0100",
		"channel":   "sms",
		"subject":   "Code",
		"body":      "Your code is 1234",
	})
	if resp.StatusCode != http.StatusCreated || !out.Success {
		t.Fatalf("status %d, %+v", resp.StatusCode, out)
	}
	if out.Data["status"] != "failed" {
		t.Errorf("notification status: %v", out.Data["status"])
	}
	reason, _ := out.Data["failure_reason"].(string)
	if !strings.Contains(reason, "not implemented") {
		t.Errorf("failure reason: %q", reason)
	}
}

func TestOperationsListing(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/operations")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}

	var out struct {
		Operations map[string][]string `json:"operations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	transports, ok := out.Operations["create_user"]
	if !ok {
		t.Fatalf("create_user missing: %v", out.Operations)
	}
	want := []string{"http", "kafka", "queue"}
	if len(transports) != len(want) {
		t.Fatalf("create_user transports: %v", transports)
	}
	for i, transport := range want {
		if transports[i] != transport {
			t.Errorf("transports[%d] = %q, want %q", i, transports[i], transport)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status: %d", resp.StatusCode)
	}

	var health map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health["status"] != "healthy" || health["service"] != "dispatch-service" {
		t.Errorf("unexpected health body: %v", health)
	}
}

func TestReadinessReportsFailure(t *testing.T) {
	server := newTestServer(t, func(context.Context) error {
		return errors.New("postgres: connection refused")
	})

	resp, err := http.Get(server.URL + "/health/ready")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	server := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/health/", nil)
	req.Header.Set("X-Request-ID", "trace-me-7")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "trace-me-7" {
		t.Errorf("X-Request-ID = %q, want trace-me-7", got)
	}
}
