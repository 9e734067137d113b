package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Open creates a Repository for the given DSN. A postgres:// URL gets
// the pgx-backed repository; anything else is treated as a SQLite
// file path.
func Open(ctx context.Context, dsn string) (Repository, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return NewPostgres(ctx, dsn)
	}
	return NewSQLite(dsn)
}

// DefaultDBPath resolves the SQLite database path in priority order:
// PREPDESK_DB, $XDG_DATA_HOME/prepdesk/prepdesk.db,
// ~/.local/share/prepdesk/prepdesk.db.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PREPDESK_DB"); p != "" {
		if strings.HasPrefix(p, "postgres://") || strings.HasPrefix(p, "postgresql://") {
			return p, nil
		}
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "prepdesk", "prepdesk.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
