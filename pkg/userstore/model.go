package userstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/user"
)

// UserDao is a data access object that maps directly to the 'users' table in
// PostgreSQL. Nullable columns reflect the additive migration history: every
// credential column after the initial generation is optional.
type UserDao struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                     int64     `bun:"id,pk,autoincrement"`
	WalletAddress          string    `bun:"wallet_address,unique,notnull,type:varchar(42)"`
	WebhookUUID            string    `bun:"webhook_uuid,unique,notnull,type:varchar(36)"`
	EncryptedWebhookSecret *string   `bun:"encrypted_webhook_secret,type:text"`
	CreatedAt              time.Time `bun:"created_at,nullzero,default:current_timestamp"`

	// Legacy generation.
	EncryptedTestnetMnemonic *string `bun:"encrypted_dydx_testnet_mnemonic,type:text"`
	EncryptedMainnetMnemonic *string `bun:"encrypted_dydx_mainnet_mnemonic,type:text"`

	// Network selector. No column default: an absent selection stays NULL.
	NetworkID *int64 `bun:"dydx_network_id"`

	// Unified generation.
	DydxAddress       *string `bun:"dydx_address,type:varchar(43)"`
	EncryptedMnemonic *string `bun:"encrypted_dydx_mnemonic,type:varchar(500)"`
}

// toUserDao converts a user.User to UserDao.
func toUserDao(usr *user.User) *UserDao {
	dao := &UserDao{
		WalletAddress: usr.WalletAddress,
		WebhookUUID:   usr.WebhookUUID,
		CreatedAt:     usr.CreatedAt,
	}

	if usr.EncryptedWebhookSecret != "" {
		dao.EncryptedWebhookSecret = &usr.EncryptedWebhookSecret
	}
	if usr.EncryptedTestnetMnemonic != "" {
		dao.EncryptedTestnetMnemonic = &usr.EncryptedTestnetMnemonic
	}
	if usr.EncryptedMainnetMnemonic != "" {
		dao.EncryptedMainnetMnemonic = &usr.EncryptedMainnetMnemonic
	}
	if usr.NetworkID != nil {
		id := int64(*usr.NetworkID)
		dao.NetworkID = &id
	}
	if usr.DydxAddress != "" {
		dao.DydxAddress = &usr.DydxAddress
	}
	if usr.EncryptedMnemonic != "" {
		dao.EncryptedMnemonic = &usr.EncryptedMnemonic
	}

	return dao
}

// toUser converts a UserDao to user.User.
func toUser(dao *UserDao) *user.User {
	usr := &user.User{
		WalletAddress: dao.WalletAddress,
		WebhookUUID:   dao.WebhookUUID,
		CreatedAt:     dao.CreatedAt,
	}

	if dao.EncryptedWebhookSecret != nil {
		usr.EncryptedWebhookSecret = *dao.EncryptedWebhookSecret
	}
	if dao.EncryptedTestnetMnemonic != nil {
		usr.EncryptedTestnetMnemonic = *dao.EncryptedTestnetMnemonic
	}
	if dao.EncryptedMainnetMnemonic != nil {
		usr.EncryptedMainnetMnemonic = *dao.EncryptedMainnetMnemonic
	}
	if dao.NetworkID != nil {
		id := network.ID(*dao.NetworkID)
		usr.NetworkID = &id
	}
	if dao.DydxAddress != nil {
		usr.DydxAddress = *dao.DydxAddress
	}
	if dao.EncryptedMnemonic != nil {
		usr.EncryptedMnemonic = *dao.EncryptedMnemonic
	}

	return usr
}
