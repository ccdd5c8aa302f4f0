package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/mfocus/internal/infrastructure/config"
)

// Client wraps a libsql connection. When it was opened as an embedded replica
// it also owns the connector used to sync with the remote primary.
type Client struct {
	*sql.DB
	connector *libsql.Connector
}

// Options configures the database client behavior.
type Options struct {
	Ping bool
	// SyncInterval enables background replica syncs. Zero syncs only on demand.
	SyncInterval time.Duration
}

// Open connects to the database described by cfg. A local file is used on its
// own unless cfg.URL is set, in which case the file is an embedded replica of
// that primary.
func Open(cfg config.Database, opts Options) (*Client, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	if cfg.URL == "" {
		db, err := sql.Open("libsql", "file:"+cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", cfg.Path, err)
		}
		// One writer at a time keeps SQLite from returning SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		return finish(&Client{DB: db}, opts)
	}

	replicaOpts := []libsql.Option{libsql.WithAuthToken(cfg.AuthToken)}
	if opts.SyncInterval > 0 {
		replicaOpts = append(replicaOpts, libsql.WithSyncInterval(opts.SyncInterval))
	}
	connector, err := libsql.NewEmbeddedReplicaConnector(cfg.Path, cfg.URL, replicaOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedded replica: %w", err)
	}
	return finish(&Client{DB: sql.OpenDB(connector), connector: connector}, opts)
}

// OpenRemote connects straight to a libsql server over HTTP.
func OpenRemote(databaseURL, authToken string, opts Options) (*Client, error) {
	connStr := databaseURL
	if authToken != "" {
		connStr += "?authToken=" + authToken
	}
	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, err
	}

	// Turso aggressively closes idle streams, causing "stream not found"
	// errors on stale connections.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(0)

	return finish(&Client{DB: db}, opts)
}

func finish(c *Client, opts Options) (*Client, error) {
	if opts.Ping {
		if err := c.Ping(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("pinging database: %w", err)
		}
	}
	return c, nil
}

// Replica reports whether the client syncs with a remote primary.
func (c *Client) Replica() bool {
	return c.connector != nil
}

// Sync pulls changes from the primary. It is a no-op for local databases.
func (c *Client) Sync() error {
	if c.connector == nil {
		return nil
	}
	if _, err := c.connector.Sync(); err != nil {
		return fmt.Errorf("syncing replica: %w", err)
	}
	return nil
}

// Close closes the pool and the replica connector.
func (c *Client) Close() error {
	err := c.DB.Close()
	if c.connector != nil {
		if cerr := c.connector.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// IsStreamError checks if an error is a Turso "stream not found" error.
func IsStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

// WithRetry executes a function with retry logic for Turso stream errors.
// It retries up to maxRetries times when encountering "stream not found" errors.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !IsStreamError(err) || attempt == maxRetries {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return result, err
}
