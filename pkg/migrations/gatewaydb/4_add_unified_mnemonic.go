package gatewaydb

import (
	"context"
	"log"

	"github.com/uptrace/bun"
)

// Adds the unified-generation columns and drops the dydx_network_id default.
// The selector must reflect an explicit choice: a row that never selected a
// network stays NULL and resolution falls back to the configured default at
// read time, not to a value baked into the schema.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("adding unified mnemonic columns...")
		if _, err := db.ExecContext(ctx, `
			ALTER TABLE users
				ADD COLUMN IF NOT EXISTS dydx_address VARCHAR(43),
				ADD COLUMN IF NOT EXISTS encrypted_dydx_mnemonic VARCHAR(500)
		`); err != nil {
			return err
		}
		_, err := db.ExecContext(ctx, `
			ALTER TABLE users ALTER COLUMN dydx_network_id DROP DEFAULT
		`)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping unified mnemonic columns...")
		if _, err := db.ExecContext(ctx, `
			ALTER TABLE users
				DROP COLUMN IF EXISTS dydx_address,
				DROP COLUMN IF EXISTS encrypted_dydx_mnemonic
		`); err != nil {
			return err
		}
		_, err := db.ExecContext(ctx, `
			ALTER TABLE users ALTER COLUMN dydx_network_id SET DEFAULT 11155111
		`)
		return err
	})
}
