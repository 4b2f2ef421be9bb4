// Package user holds the domain model for an onboarded wallet.
package user

import (
	"time"

	"github.com/dexhook/signal-gateway/pkg/network"
)

// User represents one onboarded wallet. Credential fields from three schema
// generations coexist on the row: the legacy per-network mnemonic pair, the
// network selector, and the unified mnemonic that supersedes the pair.
// Encrypted fields hold vault ciphertext; an empty string means absent.
type User struct {
	// WalletAddress is the public chain address, immutable after creation.
	WalletAddress string

	// WebhookUUID is the opaque public identifier for the signal intake
	// endpoint. Unique, immutable, never reused.
	WebhookUUID string

	// EncryptedWebhookSecret is the ciphertext of the shared secret a
	// signal source must present. Empty when no webhook is configured.
	EncryptedWebhookSecret string

	// Legacy generation: per-network mnemonics.
	EncryptedTestnetMnemonic string
	EncryptedMainnetMnemonic string

	// NetworkID is the stored network selector. Nil means no selection
	// was ever stored; resolution falls back to the configured default.
	NetworkID *network.ID

	// Unified generation: one mnemonic plus the wallet's address on the
	// target chain.
	DydxAddress       string
	EncryptedMnemonic string

	CreatedAt time.Time
}

// New creates a User with webhook credentials and no trading credentials.
func New(walletAddress, webhookUUID, encryptedWebhookSecret string) *User {
	return &User{
		WalletAddress:          walletAddress,
		WebhookUUID:            webhookUUID,
		EncryptedWebhookSecret: encryptedWebhookSecret,
		CreatedAt:              time.Now(),
	}
}

// HasUnifiedMnemonic reports whether the unified-generation mnemonic is set.
func (u *User) HasUnifiedMnemonic() bool {
	return u.EncryptedMnemonic != ""
}

// HasLegacyMnemonic reports whether the legacy field for the given network is set.
func (u *User) HasLegacyMnemonic(id network.ID) bool {
	switch id {
	case network.Testnet:
		return u.EncryptedTestnetMnemonic != ""
	case network.Mainnet:
		return u.EncryptedMainnetMnemonic != ""
	default:
		return false
	}
}
