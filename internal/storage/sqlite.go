package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/dbx"
)

// SQLiteStore implements Store over the kv table.
type SQLiteStore struct {
	db *sql.DB
	q  dbx.DBTX
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, q: db}
}

func storageErr(format string, err error, args ...any) error {
	return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), common.ErrStorage, err)
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("failed to get kv[%s]", err, key)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return storageErr("failed to set kv[%s]", err, key)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return storageErr("failed to delete kv[%s]", err, key)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return storageErr("failed to clear kv", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT key, value FROM kv`)
	if err != nil {
		return nil, storageErr("failed to list kv", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, storageErr("failed to scan kv row", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate kv rows", err)
	}

	return result, nil
}

// Batch opens a transaction on the underlying database. Called on a store
// that is already bound to a transaction, fn simply joins it. Errors
// returned by fn pass through unchanged.
func (s *SQLiteStore) Batch(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	if s.db == nil {
		return fn(ctx, s)
	}

	var fnErr error
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fnErr = fn(ctx, &SQLiteStore{q: tx})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return storageErr("failed to run batch", err)
	}
	return err
}
