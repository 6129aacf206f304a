// Package handler holds the thin command handlers sitting between the
// dispatch core and the use cases. A handler decodes the payload into its
// operation's command, delegates to exactly one use case and returns the
// result payload; timing and error classification live in the execution
// wrapper.
package handler

import "dispatch-service/internal/dispatch"

// withContextField returns a copy of data with a transport-extracted
// field merged in, e.g. a path-derived user_id. A value already present
// in the payload is overridden: the transport's routing decision wins.
func withContextField(data map[string]any, rc dispatch.Context, field string) map[string]any {
	value, ok := rc.PathParam(field)
	if !ok {
		return data
	}
	merged := make(map[string]any, len(data)+1)
	for k, v := range data {
		merged[k] = v
	}
	merged[field] = value
	return merged
}
