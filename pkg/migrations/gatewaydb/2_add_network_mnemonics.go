package gatewaydb

import (
	"context"
	"log"

	"github.com/uptrace/bun"
)

// Splits mnemonic storage into separate testnet and mainnet fields.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("adding per-network mnemonic columns...")
		_, err := db.ExecContext(ctx, `
			ALTER TABLE users
				ADD COLUMN IF NOT EXISTS encrypted_dydx_testnet_mnemonic TEXT,
				ADD COLUMN IF NOT EXISTS encrypted_dydx_mainnet_mnemonic TEXT
		`)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping per-network mnemonic columns...")
		_, err := db.ExecContext(ctx, `
			ALTER TABLE users
				DROP COLUMN IF EXISTS encrypted_dydx_testnet_mnemonic,
				DROP COLUMN IF EXISTS encrypted_dydx_mainnet_mnemonic
		`)
		return err
	})
}
