// Package http adapts the dispatch core to HTTP: one route per
// registered operation, a uniform JSON response envelope and the
// request-scoped middleware stack.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/domain/entity"
)

// Dispatcher executes a resolved operation and reports what the registry
// currently supports. The application core satisfies this.
type Dispatcher interface {
	Dispatch(ctx context.Context, operation, transport string, data map[string]any, rc dispatch.Context) dispatch.Result
	Operations() map[string][]string
}

// ReadinessCheck reports whether downstream dependencies are reachable.
type ReadinessCheck func(ctx context.Context) error

// apiResponse is the envelope returned by every endpoint.
type apiResponse struct {
	Success         bool           `json:"success"`
	Data            map[string]any `json:"data,omitempty"`
	ErrorCode       string         `json:"error_code,omitempty"`
	Message         string         `json:"message,omitempty"`
	ExecutionTimeMS float64        `json:"execution_time_ms"`
	Timestamp       string         `json:"timestamp"`
}

// Router maps HTTP routes onto dispatch operations.
type Router struct {
	dispatcher Dispatcher
	ready      ReadinessCheck
	service    string
	version    string
	logger     *zap.Logger
	mux        *http.ServeMux
}

// NewRouter creates a new router.
func NewRouter(dispatcher Dispatcher, ready ReadinessCheck, service, version string, logger *zap.Logger) *Router {
	return &Router{
		dispatcher: dispatcher,
		ready:      ready,
		service:    service,
		version:    version,
		logger:     logger,
		mux:        http.NewServeMux(),
	}
}

// Setup configures all routes and returns the handler wrapped with the
// middleware stack.
func (rt *Router) Setup() http.Handler {
	rt.mux.HandleFunc("POST /users/{$}", rt.dispatchRoute(dispatch.OpCreateUser, http.StatusCreated))
	rt.mux.HandleFunc("PUT /users/{user_id}", rt.dispatchRoute(dispatch.OpUpdateUser, http.StatusOK, "user_id"))
	rt.mux.HandleFunc("DELETE /users/{user_id}", rt.dispatchRoute(dispatch.OpDeleteUser, http.StatusOK, "user_id"))

	rt.mux.HandleFunc("POST /payments/{$}", rt.dispatchRoute(dispatch.OpProcessPayment, http.StatusCreated))
	rt.mux.HandleFunc("POST /payments/{payment_id}/refund", rt.dispatchRoute(dispatch.OpRefundPayment, http.StatusOK, "payment_id"))

	rt.mux.HandleFunc("POST /notifications/{$}", rt.dispatchRoute(dispatch.OpSendNotification, http.StatusCreated))

	rt.mux.HandleFunc("GET /operations", rt.handleOperations)
	rt.mux.HandleFunc("GET /health/{$}", rt.handleHealth)
	rt.mux.HandleFunc("GET /health/ready", rt.handleReady)

	var handler http.Handler = rt.mux
	handler = Logging(rt.logger)(handler)
	handler = RequestID(handler)
	handler = CORS(handler)
	handler = Recover(rt.logger)(handler)

	return handler
}

// dispatchRoute builds the handler for one operation. Path parameters
// named in pathParams are copied into the request context metadata so
// command decoding can merge them over the body.
func (rt *Router) dispatchRoute(operation string, successStatus int, pathParams ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeBody(r)
		if err != nil {
			writeResult(w, dispatch.Result{
				ErrorCode: entity.CodeValidationError,
				Message:   err.Error(),
			}, successStatus)
			return
		}

		rc := dispatch.Context{
			Transport:     dispatch.TransportHTTP,
			CorrelationID: RequestIDFrom(r.Context()),
			Metadata: map[string]any{
				"request_id": RequestIDFrom(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
			},
		}
		for _, name := range pathParams {
			rc.Metadata[name] = r.PathValue(name)
		}

		res := rt.dispatcher.Dispatch(r.Context(), operation, dispatch.TransportHTTP, data, rc)
		writeResult(w, res, successStatus)
	}
}

func (rt *Router) handleOperations(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"operations": rt.dispatcher.Operations(),
	})
}

func (rt *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": rt.service,
		"version": rt.version,
	})
}

func (rt *Router) handleReady(w http.ResponseWriter, r *http.Request) {
	if rt.ready != nil {
		if err := rt.ready(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"reason": err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// decodeBody reads the request body as a JSON object. An empty body is
// an empty payload, not an error, so bodyless DELETEs work.
func decodeBody(r *http.Request) (map[string]any, error) {
	var data map[string]any

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("invalid JSON body: %v", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// writeResult renders a dispatch result with the HTTP status implied by
// its error code.
func writeResult(w http.ResponseWriter, res dispatch.Result, successStatus int) {
	status := successStatus
	if !res.Success {
		status = statusForCode(res.ErrorCode)
	}
	respondJSON(w, status, apiResponse{
		Success:         res.Success,
		Data:            res.Data,
		ErrorCode:       res.ErrorCode,
		Message:         res.Message,
		ExecutionTimeMS: res.ExecutionTimeMS,
		Timestamp:       time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func statusForCode(code string) int {
	switch code {
	case entity.CodeValidationError:
		return http.StatusBadRequest
	case entity.CodeNotFound:
		return http.StatusNotFound
	case entity.CodeAlreadyExists:
		return http.StatusConflict
	case entity.CodeBusinessRuleViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
