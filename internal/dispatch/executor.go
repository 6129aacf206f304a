package dispatch

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"dispatch-service/internal/correlation"
	"dispatch-service/internal/domain/entity"
)

const internalErrorMessage = "An unexpected error occurred"

// Execute resolves the envelope's handler and runs it, producing the
// uniform Result. Domain errors keep their stable code and message
// verbatim; anything unexpected is logged in full but surfaced only as a
// generic INTERNAL_ERROR. Callers never see a raw error or panic from
// this boundary.
func Execute(ctx context.Context, registry *Registry, env Envelope, logger *zap.Logger) (result Result) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("handler panicked",
				zap.String("operation", env.Operation),
				zap.String("transport", env.Transport),
				zap.String("envelope_id", env.ID),
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)
			result = failure(entity.CodeInternalError, internalErrorMessage, start)
		}
	}()

	if env.Operation == "" {
		return failure(entity.CodeValidationError, "operation must not be empty", start)
	}

	handler, err := registry.Resolve(env.Operation, env.Transport)
	if err != nil {
		return failure(entity.CodeValidationError, err.Error(), start)
	}

	ctx = correlation.With(ctx, env.Context.CorrelationID)
	data, err := handler.Handle(ctx, env.Data, env.Context)
	if err != nil {
		if domainErr, ok := entity.AsDomainError(err); ok {
			return failure(domainErr.Code, domainErr.Message, start)
		}
		logger.Error("operation failed with unexpected error",
			zap.String("operation", env.Operation),
			zap.String("transport", env.Transport),
			zap.String("envelope_id", env.ID),
			zap.String("correlation_id", env.Context.CorrelationID),
			zap.Error(err),
		)
		return failure(entity.CodeInternalError, internalErrorMessage, start)
	}

	return Result{Success: true, Data: data, ExecutionTimeMS: elapsedMS(start)}
}

func failure(code, message string, start time.Time) Result {
	return Result{
		Success:         false,
		ErrorCode:       code,
		Message:         message,
		ExecutionTimeMS: elapsedMS(start),
	}
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
