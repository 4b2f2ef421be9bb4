package signal

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/dexhook/signal-gateway/pkg/app/errors"
	apphttp "github.com/dexhook/signal-gateway/pkg/app/http"
)

const maxPayloadBytes = 1 << 20 // 1MB

// HTTP wraps the Service to provide the public webhook endpoint
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the webhook signal endpoint on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/api/webhooks/signal/{webhook_uuid}", apphttp.HandleError(h.signal))
}

// signal handles one inbound webhook signal. The response never echoes any
// secret or mnemonic material, under any outcome.
func (h *HTTP) signal(w http.ResponseWriter, r *http.Request) error {
	webhookUUID := chi.URLParam(r, "webhook_uuid")
	if webhookUUID == "" {
		return apperrors.BadRequestError(nil, "missing webhook identifier")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	receipt, err := h.service.HandleSignal(r.Context(), webhookUUID, body)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, receipt)
	return nil
}
