package db

import (
	"context"
	"database/sql"
)

const stateMigration = `
CREATE TABLE IF NOT EXISTS client_state (
    key text PRIMARY KEY,
    value text NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

// RunStateMigration creates the key/value table backing durable client state.
func RunStateMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, stateMigration)
	return err
}
