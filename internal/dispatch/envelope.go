package dispatch

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the normalized form every inbound request takes before it
// reaches the registry, regardless of transport.
type Envelope struct {
	ID         string
	Operation  string
	Transport  string
	Data       map[string]any
	Context    Context
	ReceivedAt time.Time
}

// NewEnvelope normalizes one inbound request. A nil data payload becomes
// an empty map so handlers can decode without nil checks.
func NewEnvelope(operation, transport string, data map[string]any, rc Context) Envelope {
	if data == nil {
		data = map[string]any{}
	}
	rc.Transport = transport
	return Envelope{
		ID:         uuid.NewString(),
		Operation:  operation,
		Transport:  transport,
		Data:       data,
		Context:    rc,
		ReceivedAt: time.Now().UTC(),
	}
}
