// Package app wires configuration, adapters and the dispatch core into
// a runnable service.
package app

import (
	"context"

	"go.uber.org/zap"

	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/domain/repository"
	"dispatch-service/internal/domain/service"
	"dispatch-service/internal/handler"
	"dispatch-service/internal/usecase"
)

// Ports bundles every outbound dependency of the application core.
// Transports, storage and providers are bound here once and flow into
// the use cases by construction.
type Ports struct {
	Users         repository.UserRepository
	Payments      repository.PaymentRepository
	Notifications repository.NotificationRepository
	Publisher     service.EventPublisher
	Email         service.EmailService
	Gateway       service.PaymentGateway
}

// Application owns the operation registry and executes commands against
// it. Every transport adapter dispatches through the same instance.
type Application struct {
	registry *dispatch.Registry
	logger   *zap.Logger
}

// NewApplication builds the use cases and registers every
// (operation, transport) pair the service supports.
func NewApplication(logger *zap.Logger, ports Ports) *Application {
	userService := service.NewUserDomainService(ports.Users)

	createUser := usecase.NewCreateUserUseCase(ports.Users, userService, ports.Notifications, ports.Publisher, logger)
	updateUser := usecase.NewUpdateUserUseCase(ports.Users, ports.Publisher, logger)
	deleteUser := usecase.NewDeleteUserUseCase(ports.Users, ports.Publisher, logger)
	processPayment := usecase.NewProcessPaymentUseCase(ports.Payments, userService, ports.Gateway, ports.Publisher, logger)
	refundPayment := usecase.NewRefundPaymentUseCase(ports.Payments, ports.Publisher, logger)
	sendNotification := usecase.NewSendNotificationUseCase(ports.Notifications, ports.Email, ports.Publisher, logger)

	registry := dispatch.NewRegistry()

	allTransports := []string{dispatch.TransportHTTP, dispatch.TransportKafka, dispatch.TransportQueue}
	httpOnly := []string{dispatch.TransportHTTP}

	register := func(operation string, transports []string, build func(transport string) dispatch.Handler) {
		for _, transport := range transports {
			registry.Register(operation, transport, func() dispatch.Handler {
				return build(transport)
			})
		}
	}

	register(dispatch.OpCreateUser, allTransports, func(t string) dispatch.Handler {
		return handler.NewCreateUserHandler(createUser, t, logger)
	})
	register(dispatch.OpUpdateUser, httpOnly, func(t string) dispatch.Handler {
		return handler.NewUpdateUserHandler(updateUser, t, logger)
	})
	register(dispatch.OpDeleteUser, httpOnly, func(t string) dispatch.Handler {
		return handler.NewDeleteUserHandler(deleteUser, t, logger)
	})
	register(dispatch.OpProcessPayment, allTransports, func(t string) dispatch.Handler {
		return handler.NewProcessPaymentHandler(processPayment, t, logger)
	})
	register(dispatch.OpRefundPayment, httpOnly, func(t string) dispatch.Handler {
		return handler.NewRefundPaymentHandler(refundPayment, t, logger)
	})
	register(dispatch.OpSendNotification, httpOnly, func(t string) dispatch.Handler {
		return handler.NewSendNotificationHandler(sendNotification, t, logger)
	})

	return &Application{registry: registry, logger: logger}
}

// Dispatch executes one operation through the registry and returns the
// uniform result.
func (a *Application) Dispatch(ctx context.Context, operation, transport string, data map[string]any, rc dispatch.Context) dispatch.Result {
	env := dispatch.NewEnvelope(operation, transport, data, rc)
	return dispatch.Execute(ctx, a.registry, env, a.logger)
}

// Operations lists every registered operation with its transports.
func (a *Application) Operations() map[string][]string {
	return a.registry.Operations()
}
