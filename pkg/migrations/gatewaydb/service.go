// Package gatewaydb holds all the migrations for the gateway database.
// The history is forward-only and additive: credential columns accumulate
// across schema generations, and nothing destructive touches existing data.
package gatewaydb

import "github.com/uptrace/bun/migrate"

// Migrations is the migration collection the migrate command runs.
var Migrations = migrate.NewMigrations()
