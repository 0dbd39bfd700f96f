// Package sqlite stores the shape collection as one row of a key-value table
// in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/aretw0/geoarch/pkg/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at INTEGER NOT NULL
)`

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path     string // database file
	Key      string // slot key, defaults to core.DefaultStoreKey
	ReadOnly bool
	Logger   *slog.Logger
}

// Repository implements core.Repository on a SQLite key-value table.
type Repository struct {
	config Config
	db     *sql.DB

	mu       sync.RWMutex
	saves    int
	lastSave *time.Time
}

// Open opens (creating if needed) the database file. Call Initialize before use.
func Open(cfg Config) (*Repository, error) {
	if cfg.Key == "" {
		cfg.Key = core.DefaultStoreKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	db, err := openDB(cfg.Path, cfg.ReadOnly)
	if err != nil {
		return nil, err
	}
	return &Repository{config: cfg, db: db}, nil
}

func openDB(path string, readOnly bool) (*sql.DB, error) {
	mode := "rwc"
	if readOnly {
		mode = "ro"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=%s&_pragma=busy_timeout=5000", path, mode)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Initialize creates the kv table.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.ReadOnly {
		return r.db.PingContext(ctx)
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Load reads the slot row. A missing row is an empty collection.
func (r *Repository) Load(ctx context.Context) ([]core.Shape, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, r.config.Key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", r.config.Key, err)
	}

	shapes, err := core.DecodeShapes([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("slot %s: %w", r.config.Key, err)
	}
	return shapes, nil
}

// Save upserts the slot row with the whole collection.
func (r *Repository) Save(ctx context.Context, shapes []core.Shape) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	data, err := core.EncodeShapes(shapes)
	if err != nil {
		return fmt.Errorf("failed to encode shapes: %w", err)
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
    `, r.config.Key, string(data), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("write slot %s: %w", r.config.Key, err)
	}

	r.mu.Lock()
	r.saves++
	r.lastSave = &now
	r.mu.Unlock()
	r.config.Logger.Debug("slot saved", "key", r.config.Key, "shapes", len(shapes))
	return nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path     string     `json:"path"`
	Key      string     `json:"key"`
	ReadOnly bool       `json:"read_only"`
	Saves    int        `json:"saves"`
	LastSave *time.Time `json:"last_save,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RepositoryState{
		Path:     r.config.Path,
		Key:      r.config.Key,
		ReadOnly: r.config.ReadOnly,
		Saves:    r.saves,
		LastSave: r.lastSave,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite"
}

var _ core.Repository = (*Repository)(nil)
var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
