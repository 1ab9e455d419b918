package kv

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS namespaces (
	name       TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

// SQLite is a Store persisted in a single SQLite file.
type SQLite struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// OpenSQLite opens (creating if needed) the database at path. The parent
// directory must exist.
func OpenSQLite(path string, poolSize int, logger *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("kv: sqlite path is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("kv: opening %s: %w", path, err)
	}

	logger.Info("local store opened", "path", path, "pool_size", poolSize)
	return &SQLite{pool: pool, logger: logger, path: path}, nil
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("kv: %s: %w", pragma, err)
		}
	}
	return sqlitex.ExecuteScript(conn, schema, nil)
}

func (s *SQLite) Get(ctx context.Context, namespace string) ([]byte, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("kv: take: %w", err)
	}
	defer s.pool.Put(conn)
	return readNamespace(conn, namespace)
}

func (s *SQLite) Update(ctx context.Context, namespace string, fn UpdateFunc) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("kv: take: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("kv: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	current, exists, err := readNamespace(conn, namespace)
	if err != nil {
		return err
	}
	next, err := fn(current, exists)
	if err != nil {
		return err
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO namespaces (name, value, updated_at) VALUES (?, ?, unixepoch())
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{namespace, next}})
	if err != nil {
		return fmt.Errorf("kv: write %s: %w", namespace, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("local store close error", "path", s.path, "error", err)
		return fmt.Errorf("kv: closing %s: %w", s.path, err)
	}
	return nil
}

func readNamespace(conn *sqlite.Conn, namespace string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := sqlitex.Execute(conn, "SELECT value FROM namespaces WHERE name = ?", &sqlitex.ExecOptions{
		Args: []any{namespace},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("kv: read %s: %w", namespace, err)
	}
	return value, found, nil
}
