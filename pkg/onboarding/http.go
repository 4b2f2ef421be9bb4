package onboarding

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/dexhook/signal-gateway/pkg/app/errors"
	apphttp "github.com/dexhook/signal-gateway/pkg/app/http"
	"github.com/dexhook/signal-gateway/pkg/network"
)

// maxRequestBytes bounds operator request bodies. Mnemonic imports are the
// largest payload and stay well under this.
const maxRequestBytes = 16 << 10

type handler struct {
	service  Service
	validate *validator.Validate
}

// RegisterRoutes mounts the operator endpoints on the given router. The
// caller is expected to have wrapped the router in authentication
// middleware; nothing here is reachable by webhook callers.
func RegisterRoutes(r chi.Router, service Service) {
	h := &handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	r.Post("/api/operator/users", apphttp.HandleError(h.onboard))
	r.Post("/api/operator/users/{wallet_address}/webhook-secret", apphttp.HandleError(h.rotateSecret))
	r.Put("/api/operator/users/{wallet_address}/mnemonic", apphttp.HandleError(h.importMnemonic))
	r.Put("/api/operator/users/{wallet_address}/network", apphttp.HandleError(h.setNetwork))
	r.Delete("/api/operator/users/{wallet_address}/credentials", apphttp.HandleError(h.disable))
}

type onboardRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,eth_addr"`
}

func (h *handler) onboard(w http.ResponseWriter, r *http.Request) error {
	var req onboardRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	resp, err := h.service.Onboard(r.Context(), req.WalletAddress)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *handler) rotateSecret(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.RotateWebhookSecret(r.Context(), chi.URLParam(r, "wallet_address"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

// importMnemonicRequest covers both mnemonic generations. A request with
// dydx_address is a unified import; one with network_id is a legacy import.
type importMnemonicRequest struct {
	Mnemonic    string `json:"mnemonic" validate:"required,max=500"`
	DydxAddress string `json:"dydx_address" validate:"omitempty,max=43"`
	NetworkID   *int64 `json:"network_id" validate:"omitempty"`
}

func (h *handler) importMnemonic(w http.ResponseWriter, r *http.Request) error {
	walletAddress := chi.URLParam(r, "wallet_address")

	var req importMnemonicRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	switch {
	case req.DydxAddress != "":
		if req.NetworkID != nil {
			return apperrors.BadRequestError(nil, "dydx_address and network_id are mutually exclusive")
		}
		if err := h.service.ImportUnifiedMnemonic(r.Context(), walletAddress, req.DydxAddress, req.Mnemonic); err != nil {
			return err
		}
	case req.NetworkID != nil:
		if err := h.service.ImportLegacyMnemonic(r.Context(), walletAddress, network.ID(*req.NetworkID), req.Mnemonic); err != nil {
			return err
		}
	default:
		return apperrors.BadRequestError(nil, "either dydx_address or network_id is required")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

type setNetworkRequest struct {
	NetworkID int64 `json:"network_id" validate:"required"`
}

func (h *handler) setNetwork(w http.ResponseWriter, r *http.Request) error {
	var req setNetworkRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	if err := h.service.SetNetwork(r.Context(), chi.URLParam(r, "wallet_address"), network.ID(req.NetworkID)); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *handler) disable(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.Disable(r.Context(), chi.URLParam(r, "wallet_address")); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// decode reads and validates a JSON request body into dst.
func (h *handler) decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperrors.BadRequestError(err, "invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperrors.BadRequestError(err, fmt.Sprintf("validation failed: %v", err))
	}
	return nil
}
