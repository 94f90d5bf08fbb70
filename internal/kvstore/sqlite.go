package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/alexanderramin/dayplanner/internal/db"
)

// SQLiteStore implements Store on the kv table.
type SQLiteStore struct {
	db  db.DBTX
	uow db.UnitOfWork
	now func() time.Time
}

// NewSQLiteStore creates a store over conn. SetMany is atomic when uow is
// non-nil; otherwise entries are written one by one.
func NewSQLiteStore(conn db.DBTX, uow db.UnitOfWork) *SQLiteStore {
	return &SQLiteStore{db: conn, uow: uow, now: time.Now}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, unavailable("get", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value, s.now().UTC().Format(time.RFC3339)); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (s *SQLiteStore) SetMany(ctx context.Context, entries map[string]string) error {
	if s.uow == nil {
		return setSorted(ctx, s, entries)
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return setSorted(ctx, &SQLiteStore{db: tx, now: s.now}, entries)
	})
	if err != nil {
		return unavailable("set many", "", err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return unavailable("remove", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return unavailable("clear", "", err)
	}
	return nil
}

// setSorted writes entries in key order so failures are reproducible.
func setSorted(ctx context.Context, s Store, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.Set(ctx, k, entries[k]); err != nil {
			return err
		}
	}
	return nil
}
