package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/geoarch/pkg/adapters/fs"
	"github.com/aretw0/geoarch/pkg/adapters/sqlite"
	"github.com/aretw0/geoarch/pkg/core"
)

// DatabaseFile is the name of the SQLite database inside the system dir.
const DatabaseFile = "geoarch.db"

// Init prepares the data dir based on the provided configuration.
// The 'uri' argument is the data directory for both adapters; the sqlite
// adapter keeps its database under <uri>/<system dir>/geoarch.db.
//
// It returns the configured core.Repository.
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := buildOptions(opts)

	// 1. Check for injected repository
	if o.repository != nil {
		return o.repository, nil
	}

	// 2. Initialize based on Adapter
	var repo core.Repository
	var err error

	switch o.adapter {
	case AdapterFS:
		repo, err = initFS(uri, o)
	case AdapterSQLite:
		repo, err = initSQLite(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err != nil {
		return nil, err
	}

	// 3. Run Initialization
	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

// resolved is the outcome of the dev safety rules for one data dir.
type resolved struct {
	path     string
	useTemp  bool
	readOnly bool
}

func resolvePath(path string, o *options) resolved {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	// Default to true (safe) if not present.
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Bypass Safety if:
	// 1. ReadOnly is active (inherently safe)
	// 2. User explicitly disabled DevSafety
	bypassSafety := isReadOnly || !devSafety

	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	r := resolved{path: ResolveDataPath(path, useTemp), useTemp: useTemp, readOnly: isReadOnly}

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			if isReadOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", r.path)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", r.path)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", r.path)
		}
	}
	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", r.path)
	}
	return r
}

func systemDirOf(o *options) string {
	if s, _ := o.config["system_dir"].(string); s != "" {
		return s
	}
	return ".geoarch"
}

// initFS handles the initialization logic for the Filesystem adapter
func initFS(path string, o *options) (core.Repository, error) {
	autoInit, _ := o.config["auto_init"].(bool)
	gitless, _ := o.config["gitless"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	key, _ := o.config["store_key"].(string)
	lockTimeout, _ := o.config["lock_timeout"].(time.Duration)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))
	systemDir := systemDirOf(o)

	r := resolvePath(path, o)

	// If versioning is not explicitly configured, follow the data dir.
	if _, ok := o.config["gitless"]; !ok {
		gitless = detectGitless(r.path, systemDir, autoInit)
		if gitless && o.logger != nil {
			o.logger.Debug("auto-detected gitless mode", "reason", ".git missing")
		}
	}

	return fs.NewRepository(fs.Config{
		Path:         r.path,
		Key:          key,
		AutoInit:     autoInit,
		Gitless:      gitless,
		MustExist:    mustExist || (!autoInit && !r.useTemp),
		ReadOnly:     r.readOnly,
		LockTimeout:  lockTimeout,
		Logger:       o.logger,
		SystemDir:    systemDir,
		ErrorHandler: errorHandler,
	}), nil
}

// detectGitless decides versioning for a data dir nobody configured:
// an existing .git means versioned, an existing system dir without .git means
// a gitless map, and a fresh start with auto init gets git.
func detectGitless(path, systemDir string, autoInit bool) bool {
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return false
	}
	if !autoInit {
		return true
	}
	_, err := os.Stat(filepath.Join(path, systemDir))
	return err == nil
}

// initSQLite opens the database for the SQLite adapter.
func initSQLite(path string, o *options) (core.Repository, error) {
	autoInit, _ := o.config["auto_init"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	key, _ := o.config["store_key"].(string)

	r := resolvePath(path, o)
	if (mustExist || (!autoInit && !r.useTemp)) || r.readOnly {
		if _, err := os.Stat(r.path); err != nil {
			return nil, fmt.Errorf("data path does not exist: %s", r.path)
		}
	}

	return sqlite.Open(sqlite.Config{
		Path:     filepath.Join(r.path, systemDirOf(o), DatabaseFile),
		Key:      key,
		ReadOnly: r.readOnly,
		Logger:   o.logger,
	})
}

// History returns recent versions of the slot for repositories that keep them.
func History(ctx context.Context, repo core.Repository, limit int) ([]string, error) {
	h, ok := repo.(core.Versioned)
	if !ok {
		return nil, fmt.Errorf("repository does not keep history")
	}
	return h.History(ctx, limit)
}
