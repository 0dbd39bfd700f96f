package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/geoarch/pkg/adapters/fs"
	"github.com/aretw0/geoarch/pkg/core"
	"github.com/aretw0/geoarch/pkg/git"
)

// setupRepo helps create a repository for testing.
// It returns the repository and the root path of the data dir.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	dataPath := filepath.Join(t.TempDir(), "data")
	cfg := fs.Config{
		Path:      dataPath,
		AutoInit:  true,
		Gitless:   true, // Default to gitless for simplicity unless overridden
		MustExist: false,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewRepository(cfg), dataPath
}

func sampleShapes() []core.Shape {
	r := 120.0
	return []core.Shape{
		{ID: "p", Type: core.ShapePolygon, Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, CreatedAt: 10},
		{ID: "c", Type: core.ShapeCircle, Geometry: orb.Polygon{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}}, CreatedAt: 20, Radius: &r},
		{ID: "l", Type: core.ShapeLineString, Geometry: orb.LineString{{0, 0}, {2, 2}}, CreatedAt: 30},
	}
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		repo, path := setupRepo(t)

		require.NoError(t, repo.Initialize(context.Background()))
		assert.DirExists(t, path)
		assert.DirExists(t, filepath.Join(path, ".geoarch"))
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) {
			c.MustExist = true
			c.AutoInit = false
		})

		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Inits Git Repo if AutoInit=true", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		repo, path := setupRepo(t, func(c *fs.Config) {
			c.Gitless = false
		})

		require.NoError(t, repo.Initialize(context.Background()))
		assert.DirExists(t, filepath.Join(path, ".git"))

		ignore, err := os.ReadFile(filepath.Join(path, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(ignore), ".geoarch/")
		assert.Contains(t, string(ignore), ".geoarch.lock")
	})

	t.Run("Fails Without Git Repo if AutoInit=false", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		repo, _ := setupRepo(t, func(c *fs.Config) {
			c.Gitless = false
			c.AutoInit = false
		})

		assert.Error(t, repo.Initialize(context.Background()))
	})
}

func TestLoad_MissingSlot(t *testing.T) {
	repo, _ := setupRepo(t)
	require.NoError(t, repo.Initialize(context.Background()))

	shapes, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, shapes)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	in := sampleShapes()
	require.NoError(t, repo.Save(ctx, in))
	assert.FileExists(t, filepath.Join(path, core.DefaultStoreKey+".json"))

	// A fresh instance sees the same collection, in order.
	out, err := fs.NewRepository(fs.Config{Path: path, Gitless: true}).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, repo.Save(ctx, nil))
	out, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSave_CustomKeyAndIndent(t *testing.T) {
	repo, path := setupRepo(t, func(c *fs.Config) {
		c.Key = "survey"
		c.Indent = true
	})
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Save(ctx, sampleShapes()[:1]))

	data, err := os.ReadFile(filepath.Join(path, "survey.json"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "\n  "), "expected indented JSON")
	assert.Equal(t, filepath.Join(path, "survey.json"), repo.SlotPath())
}

func TestLoad_CorruptSlot(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, os.WriteFile(filepath.Join(path, core.DefaultStoreKey+".json"), []byte("<xml/>"), 0644))

	_, err := repo.Load(ctx)
	assert.True(t, errors.Is(err, core.ErrCorruptStore), "got %v", err)
}

func TestSave_ReadOnly(t *testing.T) {
	repo, _ := setupRepo(t, func(c *fs.Config) { c.ReadOnly = true })
	err := repo.Save(context.Background(), sampleShapes())
	assert.ErrorIs(t, err, core.ErrReadOnly)
}

func TestSave_GitHistory(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	repo, _ := setupRepo(t, func(c *fs.Config) { c.Gitless = false })
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	shapes := sampleShapes()
	require.NoError(t, repo.Save(ctx, shapes[:1]))
	require.NoError(t, repo.Save(ctx, shapes))
	// Unchanged content does not produce an empty commit.
	require.NoError(t, repo.Save(ctx, shapes))

	history, err := repo.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Contains(t, history[0], "save 3 shape(s)")
	assert.Contains(t, history[1], "save 1 shape(s)")
}

func TestState(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Save(ctx, sampleShapes()))

	state, ok := repo.State().(fs.RepositoryState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.Equal(t, core.DefaultStoreKey+".json", state.Slot)
	assert.Equal(t, 1, state.Saves)
	assert.NotNil(t, state.LastSave)
	assert.False(t, state.WatcherActive)
	assert.Equal(t, "fs", repo.ComponentType())
}
