package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath selects a private in-memory store.
const MemoryPath = ":memory:"

// busyTimeoutMS is how long a connection waits on another writer's lock
// before SQLITE_BUSY surfaces.
const busyTimeoutMS = 5000

// sessionPragmas run on every freshly opened store before migrations.
var sessionPragmas = []struct{ name, stmt string }{
	{"journal mode", "PRAGMA journal_mode = WAL"},
	{"foreign keys", "PRAGMA foreign_keys = ON"},
}

// OpenDB opens and migrates the slaguard store at path.
//
// MemoryPath pins the pool to one connection so all callers share a schema.
// File stores take write locks at BEGIN (_txlock=immediate), which makes each
// read-check-write unit of work serialize against concurrent sweeps and
// assignments instead of failing at commit.
func OpenDB(path string) (*sql.DB, error) {
	dsn, err := dataSource(path)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	for _, p := range sessionPragmas {
		if _, err := conn.Exec(p.stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting %s: %w", p.name, err)
		}
	}

	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return conn, nil
}

func dataSource(path string) (string, error) {
	if path == MemoryPath {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating db directory: %w", err)
	}
	return fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		path, busyTimeoutMS), nil
}
