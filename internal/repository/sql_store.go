package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskmaster/internal/database"
)

// SQLStore persists values in the kv_store table of a SQLite, PostgreSQL or
// MySQL database.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a store on a migrated database connection
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get retrieves a value by key
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	query := `SELECT store_value FROM kv_store WHERE store_key = ?`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set updates or inserts a value
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.db.Dialect.UpsertKVQuery(), key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
