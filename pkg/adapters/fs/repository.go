// Package fs stores the shape collection as a JSON file on the local filesystem.
//
// The collection lives in a single slot file, <Path>/<Key>.json, rewritten
// atomically on every save under an inter-process lock. When git versioning
// is enabled every save that changes the slot is also committed, which gives
// the map an undo history for free.
package fs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/geoarch/pkg/core"
	"github.com/aretw0/geoarch/pkg/git"
)

// ErrLockTimeout is returned by Save when another process holds the slot lock for too long.
var ErrLockTimeout = git.ErrLockTimeout

// Repository implements core.Repository using a JSON file and, optionally, Git.
type Repository struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	lastHash      [sha256.Size]byte // digest of the slot as last written or read by us
	haveHash      bool
	watcherActive bool
	lastSave      *time.Time
	saves         int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	Key          string // slot name, defaults to core.DefaultStoreKey
	AutoInit     bool
	Gitless      bool
	MustExist    bool
	ReadOnly     bool
	Indent       bool
	LockTimeout  time.Duration
	Logger       *slog.Logger
	SystemDir    string      // e.g. ".geoarch"
	ErrorHandler func(error) // receives watcher errors; optional
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Key == "" {
		config.Key = core.DefaultStoreKey
	}
	if config.SystemDir == "" {
		config.SystemDir = ".geoarch"
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	client := git.NewClient(config.Path, config.SystemDir+".lock", config.Logger)
	if config.LockTimeout > 0 {
		client.LockTimeout = config.LockTimeout
	}

	return &Repository{
		Path:   config.Path,
		git:    client,
		config: config,
	}
}

// SlotPath returns the absolute path of the slot file.
func (r *Repository) SlotPath() string {
	return filepath.Join(r.Path, r.slotName())
}

func (r *Repository) slotName() string {
	return r.config.Key + ".json"
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
func (r *Repository) Initialize(ctx context.Context) error {
	// 1. Directory Initialization
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
	}
	if !r.config.ReadOnly {
		// The system dir marks the project root for FindRoot.
		if err := os.MkdirAll(filepath.Join(r.Path, r.config.SystemDir), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if r.config.Gitless || r.config.ReadOnly {
		return nil
	}

	// 2. Git Initialization
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	// The lock file and the system dir never belong in history.
	mod, err := r.ensureIgnore(r.config.SystemDir+"/", r.config.SystemDir+".lock")
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if mod && wasNewRepo {
		if err := r.git.Add(ctx, ".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := r.git.Commit(ctx, fmt.Sprintf("chore: configure %s ignore", r.config.SystemDir)); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}

	return nil
}

func (r *Repository) ensureIgnore(entries ...string) (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	for _, e := range missing {
		if _, err := f.WriteString(e + "\n"); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Load reads the slot. A missing slot is an empty collection.
func (r *Repository) Load(ctx context.Context) ([]core.Shape, error) {
	data, err := os.ReadFile(r.SlotPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", r.slotName(), err)
	}

	r.rememberHash(data)
	shapes, err := core.DecodeShapes(data)
	if err != nil {
		return nil, fmt.Errorf("slot %s: %w", r.slotName(), err)
	}
	return shapes, nil
}

// Save replaces the slot with shapes.
//
// Workflow:
//  1. Serialize the whole collection.
//  2. Take the inter-process lock.
//  3. Write atomically (temp file + rename).
//  4. (If Git enabled) 'git add' and 'git commit' when the slot changed.
func (r *Repository) Save(ctx context.Context, shapes []core.Shape) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	data, err := r.encode(shapes)
	if err != nil {
		return fmt.Errorf("failed to encode shapes: %w", err)
	}

	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	defer unlock()

	// Remember before writing so the watcher recognizes its own write.
	r.rememberHash(data)
	if err := writeFileAtomic(r.SlotPath(), data, 0644); err != nil {
		return err
	}
	r.recordSave()

	if r.config.Gitless {
		return nil
	}
	return r.commit(ctx, len(shapes))
}

func (r *Repository) encode(shapes []core.Shape) ([]byte, error) {
	data, err := core.EncodeShapes(shapes)
	if err != nil || !r.config.Indent {
		return data, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Repository) commit(ctx context.Context, n int) error {
	status, err := r.git.Status(ctx, r.slotName())
	if err != nil {
		return err
	}
	if status == "" {
		return nil
	}
	if err := r.git.Add(ctx, r.slotName()); err != nil {
		return err
	}
	return r.git.Commit(ctx, fmt.Sprintf("save %d shape(s)", n))
}

// History returns the commit log of the slot, newest first. It is empty in gitless mode.
func (r *Repository) History(ctx context.Context, limit int) ([]string, error) {
	if r.config.Gitless || !r.git.IsRepo() {
		return nil, nil
	}
	return r.git.Log(ctx, r.slotName(), limit)
}

func (r *Repository) rememberHash(data []byte) {
	sum := sha256.Sum256(data)
	r.mu.Lock()
	r.lastHash, r.haveHash = sum, true
	r.mu.Unlock()
}

// changedExternally reports whether the slot on disk differs from what we
// last wrote or read, and remembers the new content if so.
func (r *Repository) changedExternally() bool {
	data, err := os.ReadFile(r.SlotPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false
	}
	sum := sha256.Sum256(data)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.haveHash && sum == r.lastHash {
		return false
	}
	r.lastHash, r.haveHash = sum, true
	return true
}

func (r *Repository) recordSave() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastSave = &now
	r.saves++
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
var _ core.Versioned = (*Repository)(nil)
