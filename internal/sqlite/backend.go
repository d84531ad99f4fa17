// Package sqlite implements the SQLite storage backend for menus and their
// items. The database file is the source of truth; JSONL files are only
// produced by Export and consumed by Import.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/menus/pkg/types"
)

// DatabaseFile is the name of the SQLite database inside DataDir.
const DatabaseFile = "menus.db"

// busyTimeoutMS is how long SQLite waits on a locked database before failing.
const busyTimeoutMS = 5000

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on a single SQLite database.
type Backend struct {
	mu     sync.RWMutex
	open   bool
	config types.Config
	db     *sql.DB
	now    func() time.Time
}

// NewBackend creates a new SQLite backend instance.
// The backend is not open; call Open with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{now: time.Now}
}

// Open initializes the backend with the given configuration.
// Creates DataDir if it does not exist and applies the schema.
// Returns ErrAlreadyOpen if already open.
func (b *Backend) Open(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		return types.ErrAlreadyOpen
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(filepath.Join(dataDir, DatabaseFile)))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// One connection: foreign_keys is a per-connection pragma, and SQLite
	// allows a single writer anyway.
	db.SetMaxOpenConns(1)

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.open = true
	return nil
}

// Close releases the database connection. After Close, all operations return
// ErrStoreClosed. Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	b.open = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}

// Config returns the configuration the backend was opened with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// InTx runs fn inside one database transaction. The transaction is bound to
// ctx, so cancellation before commit rolls everything back.
func (b *Backend) InTx(ctx context.Context, fn func(ctx context.Context, tx types.ItemTx) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return types.ErrStoreClosed
	}
	return b.inTxLocked(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &itemTx{tx: tx, now: b.now})
	})
}

// inTxLocked begins, runs, and commits a transaction. The caller must hold b.mu.
func (b *Backend) inTxLocked(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// dsn builds a modernc.org/sqlite data source name with foreign keys enforced.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	return "file:" + path + "?" + q.Encode()
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to UUID v4 if v7 generation fails.
		return uuid.New().String()
	}
	return id.String()
}
