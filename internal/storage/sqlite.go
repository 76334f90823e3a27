package storage

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL
)`

// SQLiteConfig holds the parameters for opening a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file. Use ":memory:" for a throwaway store;
	// the pool is then forced to a single connection since every
	// in-memory connection is its own database.
	Path string

	// PoolSize defaults to 2 when zero or negative.
	PoolSize int

	// Logger receives open/close messages. Nil discards.
	Logger *slog.Logger
}

// SQLiteStore persists keys in a single-table SQLite database.
type SQLiteStore struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// OpenSQLiteStore opens (or creates) the database at cfg.Path and makes
// sure the kv table exists.
func OpenSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitestore: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 2
	}
	if cfg.Path == ":memory:" {
		poolSize = 1
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: opening %s: %w", cfg.Path, err)
	}

	s := &SQLiteStore{pool: pool, logger: logger, path: cfg.Path}

	// Force one connection through PrepareConn so schema errors surface here.
	conn, err := s.take()
	if err != nil {
		pool.Close()
		return nil, err
	}
	s.pool.Put(conn)

	logger.Info("sqlite store opened", "path", cfg.Path, "pool_size", poolSize)
	return s, nil
}

func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitestore: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteTransient(conn, kvSchema, nil); err != nil {
		return fmt.Errorf("sqlitestore: schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) take() (*sqlite.Conn, error) {
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: take: %w", err)
	}
	return conn, nil
}

// Get retrieves a value by key.
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	conn, err := s.take()
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var (
		value []byte
		found bool
	)
	err = sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = []byte(stmt.ColumnText(0))
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: get %q: %w", key, err)
	}
	if !found {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

// Put upserts value under key.
func (s *SQLiteStore) Put(key string, value []byte) error {
	conn, err := s.take()
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		&sqlitex.ExecOptions{Args: []any{key, string(value)}})
	if err != nil {
		return fmt.Errorf("sqlitestore: put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *SQLiteStore) Delete(key string) error {
	conn, err := s.take()
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
	}); err != nil {
		return fmt.Errorf("sqlitestore: delete %q: %w", key, err)
	}
	return nil
}

// List returns all keys in sorted order.
func (s *SQLiteStore) List() ([]string, error) {
	conn, err := s.take()
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	keys := []string{}
	err = sqlitex.Execute(conn, "SELECT key FROM kv ORDER BY key", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			keys = append(keys, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list: %w", err)
	}
	return keys, nil
}

// Close closes every pooled connection.
func (s *SQLiteStore) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("sqlite store close error", "path", s.path, "error", err)
		return fmt.Errorf("sqlitestore: closing %s: %w", s.path, err)
	}
	s.logger.Info("sqlite store closed", "path", s.path)
	return nil
}
