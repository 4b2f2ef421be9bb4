package gatewaydb

import (
	"context"
	"log"

	"github.com/uptrace/bun"
)

// Adds the explicit network selector. New rows default to the public
// testnet chain id so the selection feature is safe to roll out before any
// UI exists for it.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("adding dydx_network_id column...")
		_, err := db.ExecContext(ctx, `
			ALTER TABLE users
				ADD COLUMN IF NOT EXISTS dydx_network_id BIGINT DEFAULT 11155111
		`)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping dydx_network_id column...")
		_, err := db.ExecContext(ctx, `
			ALTER TABLE users DROP COLUMN IF EXISTS dydx_network_id
		`)
		return err
	})
}
