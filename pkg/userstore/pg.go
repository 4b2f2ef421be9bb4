package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/user"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the user store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateUser(ctx context.Context, usr *user.User) error {
	dao := toUserDao(usr)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *pgStore) GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	dao := new(UserDao)
	query := s.db.NewSelect().Model(dao)

	if options.WalletAddress != nil {
		query = query.Where("wallet_address = ?", *options.WalletAddress)
	}
	if options.WebhookUUID != nil {
		query = query.Where("webhook_uuid = ?", *options.WebhookUUID)
	}

	err := query.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUser(dao), nil
}

func (s *pgStore) UserExists(ctx context.Context, walletAddress string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*UserDao)(nil)).
		Where("wallet_address = ?", walletAddress).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check user exists: %w", err)
	}
	return exists, nil
}

func (s *pgStore) UpdateWebhookSecret(ctx context.Context, walletAddress, encryptedSecret string) error {
	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set("encrypted_webhook_secret = ?", encryptedSecret).
		Where("wallet_address = ?", walletAddress).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update webhook secret: %w", err)
	}
	return requireRow(res)
}

func (s *pgStore) SetLegacyMnemonic(ctx context.Context, walletAddress string, id network.ID, encryptedMnemonic string) error {
	var col string
	switch id {
	case network.Testnet:
		col = "encrypted_dydx_testnet_mnemonic"
	case network.Mainnet:
		col = "encrypted_dydx_mainnet_mnemonic"
	default:
		return fmt.Errorf("unsupported network %s", id)
	}

	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set(col+" = ?", encryptedMnemonic).
		Where("wallet_address = ?", walletAddress).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set %s mnemonic: %w", id, err)
	}
	return requireRow(res)
}

func (s *pgStore) SetUnifiedMnemonic(ctx context.Context, walletAddress, dydxAddress, encryptedMnemonic string) error {
	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set("dydx_address = ?", dydxAddress).
		Set("encrypted_dydx_mnemonic = ?", encryptedMnemonic).
		Where("wallet_address = ?", walletAddress).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set unified mnemonic: %w", err)
	}
	return requireRow(res)
}

func (s *pgStore) SetNetworkID(ctx context.Context, walletAddress string, id network.ID) error {
	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set("dydx_network_id = ?", int64(id)).
		Where("wallet_address = ?", walletAddress).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set network id: %w", err)
	}
	return requireRow(res)
}

func (s *pgStore) ClearCredentials(ctx context.Context, walletAddress string) error {
	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set("encrypted_webhook_secret = NULL").
		Set("encrypted_dydx_testnet_mnemonic = NULL").
		Set("encrypted_dydx_mainnet_mnemonic = NULL").
		Set("encrypted_dydx_mnemonic = NULL").
		Set("dydx_address = NULL").
		Where("wallet_address = ?", walletAddress).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return requireRow(res)
}

// requireRow converts "update matched nothing" into ErrUserNotFound so
// callers can't mistake a typo'd address for success.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
