// Package webhook authenticates inbound signals against per-user shared
// secrets. Comparison is constant-time over fixed-length keyed digests, so
// neither secret length nor content leaks through timing.
package webhook

import (
	"context"
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"

	"github.com/dexhook/signal-gateway/pkg/user"
	"github.com/dexhook/signal-gateway/pkg/userstore"
	"github.com/dexhook/signal-gateway/pkg/vault"
)

// Result classifies an authentication attempt.
type Result int

const (
	// ResultAuthenticated means the presented secret matched.
	ResultAuthenticated Result = iota
	// ResultUnknown means no user exists for the webhook UUID.
	ResultUnknown
	// ResultNotConfigured means the user exists but has no webhook secret.
	ResultNotConfigured
	// ResultRejected means the presented secret did not match.
	ResultRejected
	// ResultInternalError means the stored secret could not be read or
	// decrypted. Operator-visible, never reported as a wrong secret.
	ResultInternalError
)

func (r Result) String() string {
	switch r {
	case ResultAuthenticated:
		return "authenticated"
	case ResultUnknown:
		return "unknown"
	case ResultNotConfigured:
		return "not_configured"
	case ResultRejected:
		return "rejected"
	default:
		return "internal_error"
	}
}

// AuthResult is the outcome of an authentication attempt. User is non-nil
// only for ResultAuthenticated. Err carries the internal failure detail for
// logging; it is never surfaced to the caller.
type AuthResult struct {
	Result Result
	User   *user.User
	Err    error
}

// Store is the narrow data-access interface the authenticator needs.
type Store interface {
	GetUser(ctx context.Context, opts ...userstore.QueryOption) (*user.User, error)
}

// SecretCipher is the subset of vault.Cipher the authenticator uses.
type SecretCipher interface {
	Decrypt(ciphertext string) ([]byte, error)
	SecretDigest(secret []byte) []byte
}

// Authenticator verifies inbound signal secrets.
type Authenticator struct {
	store  Store
	cipher SecretCipher
	logger *zap.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(store Store, cipher SecretCipher, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		store:  store,
		cipher: cipher,
		logger: logger,
	}
}

// Authenticate looks up the user behind webhookUUID and verifies the
// presented secret against the stored encrypted secret. Unknown UUID and
// wrong secret are distinct results internally; callers collapse them at the
// public boundary to avoid identity enumeration.
func (a *Authenticator) Authenticate(ctx context.Context, webhookUUID, presentedSecret string) AuthResult {
	usr, err := a.store.GetUser(ctx, userstore.WithWebhookUUID(webhookUUID))
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return AuthResult{Result: ResultUnknown, Err: err}
		}
		return AuthResult{Result: ResultInternalError, Err: err}
	}

	if usr.EncryptedWebhookSecret == "" {
		return AuthResult{Result: ResultNotConfigured}
	}

	storedSecret, err := a.cipher.Decrypt(usr.EncryptedWebhookSecret)
	if err != nil {
		// Corrupt ciphertext is an operator problem, not a caller one.
		a.logger.Error("Stored webhook secret cannot be decrypted",
			zap.String("wallet_address", usr.WalletAddress),
			zap.Error(err),
		)
		if !errors.Is(err, vault.ErrDecryption) {
			err = errors.Join(vault.ErrDecryption, err)
		}
		return AuthResult{Result: ResultInternalError, Err: err}
	}

	// Fixed-length digests: no short-circuit on secret length.
	stored := a.cipher.SecretDigest(storedSecret)
	presented := a.cipher.SecretDigest([]byte(presentedSecret))
	if subtle.ConstantTimeCompare(stored, presented) != 1 {
		return AuthResult{Result: ResultRejected}
	}

	return AuthResult{Result: ResultAuthenticated, User: usr}
}
