// Package credential implements mnemonic resolution across the coexisting
// schema generations of the users table. The precedence rule here is the
// single source of truth; callers never inspect the encrypted fields
// themselves.
package credential

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/user"
	"github.com/dexhook/signal-gateway/pkg/vault"
)

// ErrNotFound is returned when no usable mnemonic exists for the resolved
// network. It is distinct from vault.ErrDecryption: absence of a field is
// never reported as a decryption failure, and vice versa.
var ErrNotFound = errors.New("no trading credential for the resolved network")

// Source tags which schema generation a resolution came from.
type Source int

const (
	// SourceUnified is the unified-generation mnemonic.
	SourceUnified Source = iota
	// SourceLegacy is one of the per-network legacy fields.
	SourceLegacy
)

func (s Source) String() string {
	if s == SourceUnified {
		return "unified"
	}
	return "legacy"
}

// Resolved is a decrypted, ready-to-use trading credential.
type Resolved struct {
	// Mnemonic is the decrypted seed phrase. Never logged or serialized.
	Mnemonic []byte
	// Network is the effective network the mnemonic was selected for.
	Network network.ID
	// Address is the wallet's address on the target chain. Empty for
	// legacy-generation credentials, which never stored one.
	Address string
	// Source tags the schema generation the credential came from.
	Source Source
}

// Resolver selects and decrypts the authoritative mnemonic for a user.
type Resolver struct {
	cipher         vault.Cipher
	defaultNetwork network.ID
	logger         *zap.Logger
}

// NewResolver creates a Resolver. defaultNetwork applies when neither the
// request nor the user record carries a network selection.
func NewResolver(cipher vault.Cipher, defaultNetwork network.ID, logger *zap.Logger) *Resolver {
	return &Resolver{
		cipher:         cipher,
		defaultNetwork: defaultNetwork,
		logger:         logger,
	}
}

// Resolve determines which encrypted field to decrypt for usr and the
// requested network, and returns the plaintext mnemonic with the effective
// network.
//
// Precedence, total over all schema-generation combinations:
//  1. Effective network = requested if given, else the stored selector,
//     else the configured default.
//  2. The unified mnemonic, when present, always wins over the legacy pair.
//  3. Otherwise the legacy field matching the effective network is used.
//     A missing match is ErrNotFound; the other network's mnemonic is never
//     substituted.
//
// Decryption failure at any step is vault.ErrDecryption, never ErrNotFound.
func (r *Resolver) Resolve(usr *user.User, requested *network.ID) (*Resolved, error) {
	effective := r.effectiveNetwork(usr, requested)

	if usr.HasUnifiedMnemonic() {
		mnemonic, err := r.cipher.Decrypt(usr.EncryptedMnemonic)
		if err != nil {
			r.logger.Error("Mnemonic decryption failed",
				zap.String("wallet_address", usr.WalletAddress),
				zap.String("field", "encrypted_dydx_mnemonic"),
				zap.Error(err),
			)
			return nil, fmt.Errorf("unified mnemonic: %w", err)
		}
		return &Resolved{
			Mnemonic: mnemonic,
			Network:  effective,
			Address:  usr.DydxAddress,
			Source:   SourceUnified,
		}, nil
	}

	ciphertext, field := legacyField(usr, effective)
	if ciphertext == "" {
		return nil, fmt.Errorf("%w: network %s", ErrNotFound, effective)
	}

	mnemonic, err := r.cipher.Decrypt(ciphertext)
	if err != nil {
		r.logger.Error("Mnemonic decryption failed",
			zap.String("wallet_address", usr.WalletAddress),
			zap.String("field", field),
			zap.Error(err),
		)
		return nil, fmt.Errorf("legacy %s mnemonic: %w", effective, err)
	}

	return &Resolved{
		Mnemonic: mnemonic,
		Network:  effective,
		Source:   SourceLegacy,
	}, nil
}

func (r *Resolver) effectiveNetwork(usr *user.User, requested *network.ID) network.ID {
	if requested != nil {
		return *requested
	}
	if usr.NetworkID != nil {
		return *usr.NetworkID
	}
	return r.defaultNetwork
}

func legacyField(usr *user.User, id network.ID) (ciphertext, column string) {
	switch id {
	case network.Testnet:
		return usr.EncryptedTestnetMnemonic, "encrypted_dydx_testnet_mnemonic"
	case network.Mainnet:
		return usr.EncryptedMainnetMnemonic, "encrypted_dydx_mainnet_mnemonic"
	default:
		return "", ""
	}
}
