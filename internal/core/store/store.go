package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/notiva/notiva/internal/config"
)

const driverName = "libsql"

// Store holds the libsql connection backing the view counters and the
// subscriber list.
type Store struct {
	DB *sql.DB
}

// Open connects to the store and verifies the connection. A remote
// Turso URL takes precedence over a local path; with neither configured
// Open fails.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	if driver := strings.TrimSpace(cfg.Driver); driver != "" && driver != driverName {
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	dsn, err := connString(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	return &Store{DB: db}, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// connString picks the remote Turso URL when one is configured and the
// local sqlite file otherwise.
func connString(cfg config.StoreConfig) (string, error) {
	if remote := strings.TrimSpace(cfg.URL); remote != "" {
		return withAuthToken(remote, cfg.AuthToken)
	}
	return localDSN(strings.TrimSpace(cfg.Path))
}

// withAuthToken appends the configured auth token to a remote URL. A
// token already present in the URL wins.
func withAuthToken(raw, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return raw, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid store url: %w", err)
	}

	query := parsed.Query()
	if query.Get("authToken") != "" {
		return raw, nil
	}
	query.Set("authToken", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// localDSN normalizes a filesystem path into a DSN the driver accepts,
// creating the parent directory for plain paths.
func localDSN(path string) (string, error) {
	switch {
	case path == "":
		return "", errors.New("store path or url is required")
	case path == ":memory:":
		return path, nil
	case strings.HasPrefix(path, "libsql:"):
		return path, nil
	case strings.HasPrefix(path, "file:"):
		local := strings.TrimPrefix(strings.TrimPrefix(path, "file:"), "//")
		if err := ensureDir(local); err != nil {
			return "", err
		}
		return path, nil
	default:
		if err := ensureDir(path); err != nil {
			return "", err
		}
		return "file:" + filepath.Clean(path), nil
	}
}

func ensureDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}

	// #nosec G301 -- data directories use 0755 for multi-user access compatibility
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return nil
}
