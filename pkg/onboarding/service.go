// Package onboarding implements the operator-facing lifecycle of a user row:
// creation, webhook secret rotation, mnemonic import per schema generation,
// network selection, and soft-disable. Rows are never hard-deleted.
package onboarding

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/dexhook/signal-gateway/pkg/app/errors"
	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/user"
	"github.com/dexhook/signal-gateway/pkg/userstore"
	"github.com/dexhook/signal-gateway/pkg/vault"
)

const (
	// webhookSecretSize is the entropy of a generated webhook secret.
	webhookSecretSize = 32

	// maxMnemonicLen matches the encrypted_dydx_mnemonic column bound.
	maxMnemonicLen = 500

	// maxDydxAddressLen matches the dydx_address column bound.
	maxDydxAddressLen = 43
)

var (
	ErrAlreadyOnboarded     = errors.New("wallet already onboarded")
	ErrInvalidWalletAddress = errors.New("invalid wallet address")
	ErrMnemonicTooLong      = errors.New("mnemonic exceeds maximum stored length")
	ErrAddressTooLong       = errors.New("chain address exceeds maximum stored length")
)

// Store is the narrow data-access interface for the onboarding service.
type Store interface {
	CreateUser(ctx context.Context, usr *user.User) error
	UserExists(ctx context.Context, walletAddress string) (bool, error)
	UpdateWebhookSecret(ctx context.Context, walletAddress, encryptedSecret string) error
	SetLegacyMnemonic(ctx context.Context, walletAddress string, id network.ID, encryptedMnemonic string) error
	SetUnifiedMnemonic(ctx context.Context, walletAddress, dydxAddress, encryptedMnemonic string) error
	SetNetworkID(ctx context.Context, walletAddress string, id network.ID) error
	ClearCredentials(ctx context.Context, walletAddress string) error
}

// OnboardResponse returns the webhook identity. The plaintext secret is
// returned exactly once, at creation or rotation; only ciphertext persists.
type OnboardResponse struct {
	WalletAddress string `json:"wallet_address"`
	WebhookUUID   string `json:"webhook_uuid"`
	WebhookSecret string `json:"webhook_secret"`
}

// Service defines the interface for the onboarding business logic
type Service interface {
	Onboard(ctx context.Context, walletAddress string) (*OnboardResponse, error)
	RotateWebhookSecret(ctx context.Context, walletAddress string) (*OnboardResponse, error)
	ImportLegacyMnemonic(ctx context.Context, walletAddress string, id network.ID, mnemonic string) error
	ImportUnifiedMnemonic(ctx context.Context, walletAddress, dydxAddress, mnemonic string) error
	SetNetwork(ctx context.Context, walletAddress string, id network.ID) error
	Disable(ctx context.Context, walletAddress string) error
}

type onboardingService struct {
	store  Store
	cipher vault.Cipher
	logger *zap.Logger
}

// NewService creates a new onboarding service
func NewService(store Store, cipher vault.Cipher, logger *zap.Logger) Service {
	return &onboardingService{
		store:  store,
		cipher: cipher,
		logger: logger,
	}
}

// Onboard creates a user row with a fresh webhook identity:
//  1. Validates the wallet address
//  2. Checks the wallet is not already onboarded
//  3. Allocates a webhook UUID (never reused; uniqueness is enforced by
//     the database constraint as well)
//  4. Generates and encrypts a webhook secret
//  5. Persists the row
func (s *onboardingService) Onboard(ctx context.Context, walletAddress string) (*OnboardResponse, error) {
	walletAddress, err := normalizeWalletAddress(walletAddress)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid wallet address")
	}

	exists, err := s.store.UserExists(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, apperrors.ConflictError(ErrAlreadyOnboarded, "wallet already onboarded")
	}

	secret, err := generateWebhookSecret()
	if err != nil {
		return nil, fmt.Errorf("secret generation failed: %w", err)
	}

	encryptedSecret, err := s.cipher.Encrypt([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt webhook secret: %w", err)
	}

	usr := user.New(walletAddress, uuid.NewString(), encryptedSecret)
	if err := s.store.CreateUser(ctx, usr); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("Wallet onboarded",
		zap.String("wallet_address", walletAddress),
		zap.String("webhook_uuid", usr.WebhookUUID),
	)

	return &OnboardResponse{
		WalletAddress: walletAddress,
		WebhookUUID:   usr.WebhookUUID,
		WebhookSecret: secret,
	}, nil
}

// RotateWebhookSecret replaces the stored webhook secret. The webhook UUID
// is immutable; only the secret changes.
func (s *onboardingService) RotateWebhookSecret(ctx context.Context, walletAddress string) (*OnboardResponse, error) {
	walletAddress, err := normalizeWalletAddress(walletAddress)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid wallet address")
	}

	secret, err := generateWebhookSecret()
	if err != nil {
		return nil, fmt.Errorf("secret generation failed: %w", err)
	}

	encryptedSecret, err := s.cipher.Encrypt([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt webhook secret: %w", err)
	}

	if err := s.store.UpdateWebhookSecret(ctx, walletAddress, encryptedSecret); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "wallet not onboarded")
		}
		return nil, fmt.Errorf("failed to rotate webhook secret: %w", err)
	}

	s.logger.Info("Webhook secret rotated", zap.String("wallet_address", walletAddress))

	return &OnboardResponse{
		WalletAddress: walletAddress,
		WebhookSecret: secret,
	}, nil
}

// ImportLegacyMnemonic stores an encrypted mnemonic in the per-network
// legacy field. Kept for rows that predate the unified generation.
func (s *onboardingService) ImportLegacyMnemonic(ctx context.Context, walletAddress string, id network.ID, mnemonic string) error {
	walletAddress, err := normalizeWalletAddress(walletAddress)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid wallet address")
	}
	if !network.Known(id) {
		return apperrors.BadRequestError(nil, fmt.Sprintf("unsupported network id %d", id))
	}
	if len(mnemonic) > maxMnemonicLen {
		return apperrors.BadRequestError(ErrMnemonicTooLong, "mnemonic too long")
	}

	encrypted, err := s.cipher.Encrypt([]byte(mnemonic))
	if err != nil {
		return fmt.Errorf("failed to encrypt mnemonic: %w", err)
	}

	if err := s.store.SetLegacyMnemonic(ctx, walletAddress, id, encrypted); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return apperrors.ResourceNotFoundError(err, "wallet not onboarded")
		}
		return fmt.Errorf("failed to store mnemonic: %w", err)
	}

	s.logger.Info("Legacy mnemonic imported",
		zap.String("wallet_address", walletAddress),
		zap.String("network", id.String()),
	)
	return nil
}

// ImportUnifiedMnemonic stores the unified-generation mnemonic and chain
// address. It supersedes the legacy pair for resolution from this point on.
func (s *onboardingService) ImportUnifiedMnemonic(ctx context.Context, walletAddress, dydxAddress, mnemonic string) error {
	walletAddress, err := normalizeWalletAddress(walletAddress)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid wallet address")
	}
	if len(mnemonic) > maxMnemonicLen {
		return apperrors.BadRequestError(ErrMnemonicTooLong, "mnemonic too long")
	}
	if len(dydxAddress) > maxDydxAddressLen {
		return apperrors.BadRequestError(ErrAddressTooLong, "chain address too long")
	}

	encrypted, err := s.cipher.Encrypt([]byte(mnemonic))
	if err != nil {
		return fmt.Errorf("failed to encrypt mnemonic: %w", err)
	}

	if err := s.store.SetUnifiedMnemonic(ctx, walletAddress, dydxAddress, encrypted); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return apperrors.ResourceNotFoundError(err, "wallet not onboarded")
		}
		return fmt.Errorf("failed to store mnemonic: %w", err)
	}

	s.logger.Info("Unified mnemonic imported", zap.String("wallet_address", walletAddress))
	return nil
}

// SetNetwork stores the explicit network selector.
func (s *onboardingService) SetNetwork(ctx context.Context, walletAddress string, id network.ID) error {
	walletAddress, err := normalizeWalletAddress(walletAddress)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid wallet address")
	}
	if !network.Known(id) {
		return apperrors.BadRequestError(nil, fmt.Sprintf("unsupported network id %d", id))
	}

	if err := s.store.SetNetworkID(ctx, walletAddress, id); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return apperrors.ResourceNotFoundError(err, "wallet not onboarded")
		}
		return fmt.Errorf("failed to set network: %w", err)
	}

	s.logger.Info("Network selection changed",
		zap.String("wallet_address", walletAddress),
		zap.String("network", id.String()),
	)
	return nil
}

// Disable blanks every credential field on the row. The row itself stays,
// so the webhook UUID is never reused by a later onboarding.
func (s *onboardingService) Disable(ctx context.Context, walletAddress string) error {
	walletAddress, err := normalizeWalletAddress(walletAddress)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid wallet address")
	}

	if err := s.store.ClearCredentials(ctx, walletAddress); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return apperrors.ResourceNotFoundError(err, "wallet not onboarded")
		}
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	s.logger.Info("Wallet disabled", zap.String("wallet_address", walletAddress))
	return nil
}

// normalizeWalletAddress validates an EVM-style hex address and returns
// its checksummed form so lookups are case-insensitive.
func normalizeWalletAddress(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWalletAddress, addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}

// generateWebhookSecret returns a URL-safe random secret.
func generateWebhookSecret() (string, error) {
	buf := make([]byte, webhookSecretSize)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
