package gatewaydb

import (
	"context"
	"log"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating users table...")
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				wallet_address VARCHAR(42) NOT NULL UNIQUE,
				webhook_uuid VARCHAR(36) NOT NULL UNIQUE,
				encrypted_webhook_secret TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS users`)
		return err
	})
}
