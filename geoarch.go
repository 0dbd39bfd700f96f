package geoarch

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/geoarch/internal/platform"
	"github.com/aretw0/geoarch/pkg/core"
)

// --- Types ---

// Service is the shape collection.
type Service = core.Service

// Shape is an accepted shape.
type Shape = core.Shape

// Proposal is a freshly drawn shape offered to the collection.
type Proposal = core.Proposal

// Result is the outcome of a proposal.
type Result = core.Result

// Limits is the per shape type admission limit table.
type Limits = core.Limits

// Config is the project configuration read from geoarch.yaml and the environment.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring geoarch.
type Option = platform.Option

// WithAutoInit enables automatic initialization of the data dir (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables git history of the slot.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name ("fs" or "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".geoarch").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithStoreKey sets the slot the collection is stored under.
func WithStoreKey(key string) Option {
	return platform.WithStoreKey(key)
}

// WithLockTimeout bounds how long a save waits for another process.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithEventBuffer allows specifying the size of the Watch channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithLimits overrides the per shape type admission limits.
func WithLimits(l Limits) Option {
	return platform.WithLimits(l)
}

// WithRecorder registers a metrics recorder.
func WithRecorder(r core.Recorder) Option {
	return platform.WithRecorder(r)
}

// WithWatcherErrorHandler registers a callback for watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithReadOnly opens the store without ever writing to it.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp dir redirect under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a new collection Service backed by the data dir at path.
func New(path string, opts ...Option) (*Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// --- Operations ---

// History lists recent versions of the slot (git-backed maps only).
func History(ctx context.Context, repo core.Repository, limit int) ([]string, error) {
	return platform.History(ctx, repo, limit)
}

// LoadConfig reads geoarch.yaml above startDir and the environment.
func LoadConfig(startDir string) (Config, error) {
	return platform.LoadConfig(startDir)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data dir based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot recursively looks upwards for a project root indicator.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
