package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureLedgerSchema creates the purchase ledger tables if missing. Safe to
// call at startup. The partial unique index enforces at most one non-failed
// purchase per (user, video); failed rows may pile up as retry history.
func EnsureLedgerSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS purchases (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			video_id TEXT NOT NULL,
			amount NUMERIC(10,2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			external_payment_id TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_purchases_active
			ON purchases (user_id, video_id) WHERE status <> 'failed'`,
		`CREATE INDEX IF NOT EXISTS ix_purchases_external
			ON purchases (external_payment_id)`,
		`CREATE TABLE IF NOT EXISTS sellers (
			user_id TEXT PRIMARY KEY,
			stripe_account_id TEXT,
			account_status TEXT NOT NULL DEFAULT 'pending',
			charges_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			payouts_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_sellers_stripe_account
			ON sellers (stripe_account_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring ledger schema failed: %w", err)
		}
	}
	return nil
}
