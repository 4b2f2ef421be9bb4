package userstore

import (
	"context"
	"errors"

	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/user"
)

// ErrUserNotFound is returned when a user lookup finds no matching record.
var ErrUserNotFound = errors.New("user not found")

// Store defines the interface for user credential persistence. Reads return
// a consistent snapshot of one row; mutations never mix credential fields
// across rows.
type Store interface {
	CreateUser(ctx context.Context, usr *user.User) error
	GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error)
	UserExists(ctx context.Context, walletAddress string) (bool, error)

	// UpdateWebhookSecret replaces the encrypted webhook secret (rotation).
	UpdateWebhookSecret(ctx context.Context, walletAddress, encryptedSecret string) error

	// SetLegacyMnemonic stores an encrypted mnemonic in the legacy field
	// for the given network.
	SetLegacyMnemonic(ctx context.Context, walletAddress string, id network.ID, encryptedMnemonic string) error

	// SetUnifiedMnemonic stores the unified-generation mnemonic and chain
	// address, superseding the legacy pair for resolution.
	SetUnifiedMnemonic(ctx context.Context, walletAddress, dydxAddress, encryptedMnemonic string) error

	// SetNetworkID stores the network selector.
	SetNetworkID(ctx context.Context, walletAddress string, id network.ID) error

	// ClearCredentials blanks every credential field on the row. This is
	// the decommission path; rows are never hard-deleted.
	ClearCredentials(ctx context.Context, walletAddress string) error
}

// QueryOptions defines options for querying users
type QueryOptions struct {
	WalletAddress *string
	WebhookUUID   *string
}

// QueryOption is a functional option for querying users
type QueryOption func(*QueryOptions)

// WithWalletAddress sets the wallet address filter
func WithWalletAddress(walletAddress string) QueryOption {
	return func(opts *QueryOptions) {
		opts.WalletAddress = &walletAddress
	}
}

// WithWebhookUUID sets the webhook UUID filter
func WithWebhookUUID(webhookUUID string) QueryOption {
	return func(opts *QueryOptions) {
		opts.WebhookUUID = &webhookUUID
	}
}
