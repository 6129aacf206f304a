// Package dispatch is the transport-neutral core: the handler contract,
// the (operation, transport) registry and the execution wrapper that
// turns any outcome into one uniform result shape.
package dispatch

import "context"

// Transport kinds understood by the registry.
const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
	TransportQueue = "queue"
)

// Operation names.
const (
	OpCreateUser       = "create_user"
	OpUpdateUser       = "update_user"
	OpDeleteUser       = "delete_user"
	OpProcessPayment   = "process_payment"
	OpRefundPayment    = "refund_payment"
	OpSendNotification = "send_notification"
)

// Context carries transport-level request information into a handler:
// which transport delivered the request, its correlation id and any
// transport-specific fields (topic/partition/offset for a stream, task id
// and retry count for a queue, path parameters for HTTP).
type Context struct {
	Transport     string
	CorrelationID string
	Metadata      map[string]any
}

// PathParam returns a string field extracted by the transport adapter,
// e.g. a path-derived user_id.
func (c Context) PathParam(name string) (string, bool) {
	v, ok := c.Metadata[name].(string)
	return v, ok
}

// Handler executes one operation for one transport. Handle returns the
// result payload or a domain error; the execution wrapper owns timing and
// error classification.
type Handler interface {
	Operation() string
	Transport() string
	Handle(ctx context.Context, data map[string]any, rc Context) (map[string]any, error)
}

// HandlerFactory builds a fresh handler per dispatch so handlers never
// share mutable state across concurrent requests.
type HandlerFactory func() Handler

// Result is the uniform outcome shape rendered by every transport.
type Result struct {
	Success         bool           `json:"success"`
	Data            map[string]any `json:"data,omitempty"`
	ErrorCode       string         `json:"error_code,omitempty"`
	Message         string         `json:"message,omitempty"`
	ExecutionTimeMS float64        `json:"execution_time_ms"`
}
