package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := backfillUpdatedAt(db); err != nil {
		return fmt.Errorf("backfilling kv updated_at: %w", err)
	}
	return nil
}

// backfillUpdatedAt stamps rows written before updated_at existed.
func backfillUpdatedAt(db *sql.DB) error {
	_, err := db.Exec(`UPDATE kv SET updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now') WHERE updated_at IS NULL`)
	return err
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`ALTER TABLE kv ADD COLUMN updated_at TEXT`,
	`CREATE INDEX IF NOT EXISTS idx_kv_updated ON kv(updated_at)`,
}
