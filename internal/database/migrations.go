package database

import (
	"context"
	"database/sql"
)

var migrations = []string{
	// board_meta holds the single snapshot version row used for compare-and-swap saves
	`CREATE TABLE IF NOT EXISTS board_meta (
		id      INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL DEFAULT 0
	)`,
	`INSERT OR IGNORE INTO board_meta (id, version) VALUES (1, 0)`,

	// seq preserves deal store insertion order; position is the index inside the stage column
	`CREATE TABLE IF NOT EXISTS deals (
		id            TEXT PRIMARY KEY,
		seq           INTEGER NOT NULL,
		title         TEXT NOT NULL,
		company       TEXT NOT NULL DEFAULT '',
		contact_name  TEXT NOT NULL DEFAULT '',
		value         REAL NOT NULL DEFAULT 0 CHECK (value >= 0),
		stage         TEXT NOT NULL,
		position      INTEGER NOT NULL,
		probability   INTEGER NOT NULL DEFAULT 0 CHECK (probability BETWEEN 0 AND 100),
		priority      TEXT NOT NULL DEFAULT 'medium',
		due_date      TEXT,
		favorite      BOOLEAN NOT NULL DEFAULT 0,
		tags          TEXT NOT NULL DEFAULT '[]',
		custom_fields TEXT NOT NULL DEFAULT '{}',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		UNIQUE (stage, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_seq ON deals(seq)`,
}

// runMigrations creates the schema. Every statement is idempotent.
func runMigrations(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range migrations {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
