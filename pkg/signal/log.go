package signal

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const serviceName = "SignalGateway"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the signal Service.
// It logs method entry/exit, duration, and errors. Payload contents are
// never logged: the payload carries the webhook secret.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// HandleSignal wraps the service method with logging
func (ls *logService) HandleSignal(
	ctx context.Context,
	webhookUUID string,
	payload []byte,
) (receipt *Receipt, err error) {
	start := time.Now()

	ls.logger.Info("HandleSignal started",
		zap.String("service", serviceName),
		zap.String("method", "HandleSignal"),
		zap.String("webhook_uuid", webhookUUID),
		zap.String("payload", redactPayload(payload)),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("HandleSignal failed",
				zap.String("service", serviceName),
				zap.String("method", "HandleSignal"),
				zap.String("webhook_uuid", webhookUUID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("HandleSignal completed",
				zap.String("service", serviceName),
				zap.String("method", "HandleSignal"),
				zap.String("webhook_uuid", webhookUUID),
				zap.String("signal_id", receipt.SignalID),
				zap.String("state", string(receipt.State)),
				zap.String("order_id", receipt.OrderID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.HandleSignal(ctx, webhookUUID, payload)
}

// redactPayload shows only the payload size. The body carries the shared
// secret, so no fragment of it is safe to log.
func redactPayload(payload []byte) string {
	return fmt.Sprintf("<%d bytes>", len(payload))
}
