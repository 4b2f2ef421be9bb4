// Package signal orchestrates the lifecycle of an inbound trading signal:
// parse, authenticate, resolve the signing credential, and hand off to the
// trading client. Each signal is an independent unit of work.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dexhook/signal-gateway/internal/metrics"
	apperrors "github.com/dexhook/signal-gateway/pkg/app/errors"
	"github.com/dexhook/signal-gateway/pkg/credential"
	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/trading"
	"github.com/dexhook/signal-gateway/pkg/user"
	"github.com/dexhook/signal-gateway/pkg/vault"
	"github.com/dexhook/signal-gateway/pkg/webhook"
)

// State is a stage in the signal lifecycle.
type State string

const (
	StateReceived      State = "received"
	StateAuthenticated State = "authenticated"
	StateResolved      State = "resolved"
	StateDispatched    State = "dispatched"
	StateFailed        State = "failed"
)

// FailureReason classifies a failed signal for telemetry. Only the reason
// kind ever leaves the process, and authentication reasons are collapsed to
// one generic rejection at the public boundary.
type FailureReason string

const (
	ReasonBadRequest         FailureReason = "bad_request"
	ReasonUnknownWebhook     FailureReason = "unknown_webhook"
	ReasonNotConfigured      FailureReason = "not_configured"
	ReasonRejected           FailureReason = "rejected"
	ReasonCredentialNotFound FailureReason = "credential_not_found"
	ReasonDecryptionError    FailureReason = "decryption_error"
	ReasonDispatchFailed     FailureReason = "dispatch_failed"
	ReasonInternal           FailureReason = "internal"
	ReasonCanceled           FailureReason = "canceled"
)

// Receipt is the externally visible record of a handled signal. It never
// carries secret or mnemonic material.
type Receipt struct {
	SignalID     string    `json:"signal_id"`
	State        State     `json:"state"`
	OrderID      string    `json:"order_id,omitempty"`
	DispatchedAt time.Time `json:"dispatched_at,omitzero"`
}

// Authenticator verifies the presented webhook secret.
type Authenticator interface {
	Authenticate(ctx context.Context, webhookUUID, presentedSecret string) webhook.AuthResult
}

// Resolver selects and decrypts the signing credential for a user.
type Resolver interface {
	Resolve(usr *user.User, requested *network.ID) (*credential.Resolved, error)
}

// Service defines the interface for the signal gateway business logic
type Service interface {
	HandleSignal(ctx context.Context, webhookUUID string, payload []byte) (*Receipt, error)
}

const unauthorizedMessage = "unauthorized"

type gatewayService struct {
	auth     Authenticator
	resolver Resolver
	factory  trading.ClientFactory
	logger   *zap.Logger
}

// NewService creates a new signal gateway service
func NewService(
	auth Authenticator,
	resolver Resolver,
	factory trading.ClientFactory,
	logger *zap.Logger,
) Service {
	return &gatewayService{
		auth:     auth,
		resolver: resolver,
		factory:  factory,
		logger:   logger,
	}
}

// HandleSignal runs one signal through the state machine
// Received -> Authenticated -> Resolved -> Dispatched, failing fast at the
// first non-passing step. Nothing is decrypted before authentication
// succeeds, and dispatch happens at most once.
func (s *gatewayService) HandleSignal(ctx context.Context, webhookUUID string, payload []byte) (*Receipt, error) {
	receipt := &Receipt{SignalID: uuid.NewString(), State: StateReceived}

	parsed, err := parsePayload(payload)
	if err != nil {
		s.fail(receipt, ReasonBadRequest)
		return nil, apperrors.BadRequestError(err, "malformed signal payload")
	}

	authRes := s.auth.Authenticate(ctx, webhookUUID, parsed.secret)
	metrics.AuthResults.WithLabelValues(authRes.Result.String()).Inc()
	if authRes.Result != webhook.ResultAuthenticated {
		return nil, s.failAuth(receipt, webhookUUID, authRes)
	}
	receipt.State = StateAuthenticated

	resolved, err := s.resolver.Resolve(authRes.User, parsed.network)
	if err != nil {
		return nil, s.failResolve(receipt, authRes.User, err)
	}
	receipt.State = StateResolved
	metrics.CredentialResolutions.WithLabelValues(resolved.Source.String()).Inc()

	// A caller abort before this point must leave no external side effect.
	// Once the handoff begins the operation is no longer cancellable.
	if err := ctx.Err(); err != nil {
		s.fail(receipt, ReasonCanceled)
		return nil, apperrors.GeneralError(err)
	}

	result, err := s.dispatch(ctx, resolved, parsed.body)
	if err != nil {
		s.fail(receipt, ReasonDispatchFailed)
		if trading.IsDuplicateSubmission(err) {
			return nil, apperrors.ConflictError(err, "order already submitted")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("dispatch failed: %w", err))
	}

	receipt.State = StateDispatched
	receipt.OrderID = result.OrderID
	receipt.DispatchedAt = result.DispatchedAt
	metrics.SignalsTotal.WithLabelValues(string(StateDispatched)).Inc()

	return receipt, nil
}

// dispatch builds the trading client and hands the signal body off exactly
// once. Retry policy belongs to the client, never to the gateway.
func (s *gatewayService) dispatch(ctx context.Context, cred *credential.Resolved, body *structpb.Struct) (*trading.DispatchResult, error) {
	client, err := s.factory.BuildClient(ctx, cred.Network, cred.Mnemonic, cred.Address)
	if err != nil {
		return nil, fmt.Errorf("build trading client: %w", err)
	}

	start := time.Now()
	result, err := client.PlaceOrder(ctx, body)
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return result, nil
}

// failAuth maps authentication outcomes to caller-visible errors. Unknown
// UUID, missing configuration, and wrong secret are indistinguishable to the
// caller; the distinction lives only in logs and metrics.
func (s *gatewayService) failAuth(receipt *Receipt, webhookUUID string, res webhook.AuthResult) error {
	switch res.Result {
	case webhook.ResultUnknown:
		s.fail(receipt, ReasonUnknownWebhook)
		return apperrors.UnAuthorizedError(res.Err, unauthorizedMessage)
	case webhook.ResultNotConfigured:
		s.fail(receipt, ReasonNotConfigured)
		return apperrors.UnAuthorizedError(nil, unauthorizedMessage)
	case webhook.ResultRejected:
		s.fail(receipt, ReasonRejected)
		return apperrors.UnAuthorizedError(nil, unauthorizedMessage)
	default:
		s.fail(receipt, ReasonInternal)
		s.logger.Error("Webhook authentication failed internally",
			zap.String("webhook_uuid", webhookUUID),
			zap.Error(res.Err),
		)
		return apperrors.GeneralError(res.Err)
	}
}

func (s *gatewayService) failResolve(receipt *Receipt, usr *user.User, err error) error {
	if errors.Is(err, vault.ErrDecryption) {
		s.fail(receipt, ReasonDecryptionError)
		// Never retried with alternate keys, never skipped to another field.
		return apperrors.GeneralError(err)
	}
	if errors.Is(err, credential.ErrNotFound) {
		s.fail(receipt, ReasonCredentialNotFound)
		s.logger.Warn("No usable trading credential",
			zap.String("wallet_address", usr.WalletAddress),
		)
		return apperrors.ResourceNotFoundError(err, "no trading credential configured")
	}
	s.fail(receipt, ReasonInternal)
	return apperrors.GeneralError(err)
}

func (s *gatewayService) fail(receipt *Receipt, reason FailureReason) {
	receipt.State = StateFailed
	metrics.SignalsTotal.WithLabelValues(string(reason)).Inc()
}

// parsedPayload is the dissected inbound body: the authentication secret,
// an optional network hint, and the remaining opaque signal fields.
type parsedPayload struct {
	secret  string
	network *network.ID
	body    *structpb.Struct
}

// parsePayload splits the raw JSON body. The secret is removed from the
// body before it goes anywhere else; the rest stays opaque apart from the
// network hint.
func parsePayload(payload []byte) (*parsedPayload, error) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	secret, ok := fields["secret"].(string)
	if !ok || secret == "" {
		return nil, fmt.Errorf("missing secret")
	}
	delete(fields, "secret")

	parsed := &parsedPayload{secret: secret}

	if raw, present := fields["network"]; present {
		var id network.ID
		switch hint := raw.(type) {
		case string:
			var err error
			if id, err = network.Parse(hint); err != nil {
				return nil, err
			}
		case float64:
			id = network.ID(hint)
			if float64(id) != hint || !network.Known(id) {
				return nil, fmt.Errorf("unsupported network id %v", hint)
			}
		default:
			return nil, fmt.Errorf("invalid network hint")
		}
		parsed.network = &id
		delete(fields, "network")
	}

	body, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("invalid signal body: %w", err)
	}
	parsed.body = body

	return parsed, nil
}
