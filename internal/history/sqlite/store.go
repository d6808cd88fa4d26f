// Package sqlite is a SQLite implementation of the history store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/resthook/internal/history"
)

// Store is a SQLite-backed history.Store.
type Store struct {
	db *sql.DB
}

var _ history.Store = (*Store)(nil)

// New opens (and if necessary creates) the history database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			status_code INTEGER,
			body_bytes INTEGER,
			duration_ns INTEGER,
			error TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

// SaveExchange inserts a completed exchange.
func (s *Store) SaveExchange(ctx context.Context, ex *history.Exchange) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, request_id, method, url, status_code, body_bytes, duration_ns, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.RequestID, ex.Method, ex.URL, ex.StatusCode, ex.BodyBytes,
		ex.Duration.Nanoseconds(), ex.Error, ex.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert exchange %s: %w", ex.ID, err)
	}
	return nil
}

// RecentExchanges returns up to limit exchanges, newest first.
func (s *Store) RecentExchanges(ctx context.Context, limit int) ([]*history.Exchange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, method, url, status_code, body_bytes, duration_ns, error, created_at
		 FROM exchanges ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var out []*history.Exchange
	for rows.Next() {
		var ex history.Exchange
		var durationNS int64
		var createdAt time.Time
		if err := rows.Scan(&ex.ID, &ex.RequestID, &ex.Method, &ex.URL,
			&ex.StatusCode, &ex.BodyBytes, &durationNS, &ex.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		ex.Duration = time.Duration(durationNS)
		ex.CreatedAt = createdAt
		out = append(out, &ex)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
