package card

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
    storage_key TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLKV stores values in a single kv_store table. Both modernc sqlite and
// lib/pq register under the dialect name.
type SQLKV struct {
	db      *sql.DB
	dialect Dialect
}

func OpenSQLKV(ctx context.Context, dialect Dialect, dsn string) (*SQLKV, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLKV{db: db, dialect: dialect}, nil
}

func (s *SQLKV) Close() error {
	return s.db.Close()
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT payload FROM kv_store WHERE storage_key = ?`
	if s.dialect == DialectPostgres {
		query = `SELECT payload FROM kv_store WHERE storage_key = $1`
	}

	var payload string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return []byte(payload), true, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (storage_key, payload) VALUES (?, ?)
		ON CONFLICT (storage_key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP
	`
	if s.dialect == DialectPostgres {
		query = `
			INSERT INTO kv_store (storage_key, payload) VALUES ($1, $2)
			ON CONFLICT (storage_key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP
		`
	}

	if _, err := s.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
