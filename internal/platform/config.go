package platform

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/geoarch/pkg/core"
)

// DefaultAddr is the listen address of the HTTP surface.
const DefaultAddr = ":3000"

// Config is the project configuration: geoarch.yaml merged with the environment.
type Config struct {
	Store  StoreConfig    `yaml:"store"`
	Limits map[string]int `yaml:"limits"`
	Server ServerConfig   `yaml:"server"`
	Log    LogConfig      `yaml:"log"`

	// Dir is the data directory. It is not read from the file; it comes from
	// GEOARCH_DIR or the directory the file was found in.
	Dir string `yaml:"-"`
}

// StoreConfig selects and tunes the storage adapter.
type StoreConfig struct {
	Adapter    string `yaml:"adapter"`
	Key        string `yaml:"key,omitempty"`
	Versioning *bool  `yaml:"versioning,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Store:  StoreConfig{Adapter: AdapterFS, Key: core.DefaultStoreKey},
		Server: ServerConfig{Addr: DefaultAddr},
		Log:    LogConfig{Level: "info", Format: "text"},
		Dir:    ".",
	}
}

// LoadConfig reads geoarch.yaml from the project root above startDir, if any,
// then applies the environment (.env in startDir first, process env wins).
// A missing file is not an error.
func LoadConfig(startDir string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Dir = startDir

	// Missing .env is fine.
	_ = godotenv.Load(filepath.Join(startDir, ".env"))

	if root, err := FindRoot(startDir); err == nil {
		cfg.Dir = root
		if err := cfg.readFile(filepath.Join(root, ConfigFileName)); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()
	return cfg, cfg.validate()
}

// WriteConfig writes cfg as geoarch.yaml in dir unless the file exists.
// It reports whether a file was written.
func WriteConfig(dir string, cfg Config) (bool, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if cfg.Limits == nil {
		cfg.Limits = make(map[string]int)
		for t, n := range core.DefaultLimits() {
			cfg.Limits[string(t)] = n
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEOARCH_DIR"); v != "" {
		c.Dir = v
	}
	if v := os.Getenv("GEOARCH_ADAPTER"); v != "" {
		c.Store.Adapter = v
	}
	if v := os.Getenv("GEOARCH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

func (c Config) validate() error {
	switch c.Store.Adapter {
	case AdapterFS, AdapterSQLite:
	default:
		return fmt.Errorf("unknown adapter: %s", c.Store.Adapter)
	}
	for name := range c.Limits {
		switch core.NormalizeTool(name) {
		case core.ShapePolygon, core.ShapeRectangle, core.ShapeCircle, core.ShapeLineString:
		default:
			return fmt.Errorf("limits: unknown shape type %q", name)
		}
	}
	return nil
}

// ShapeLimits converts the limits table. No table means core.DefaultLimits;
// a negative value means unlimited.
func (c Config) ShapeLimits() core.Limits {
	if c.Limits == nil {
		return core.DefaultLimits()
	}
	l := make(core.Limits, len(c.Limits))
	for name, n := range c.Limits {
		if n < 0 {
			continue
		}
		l[core.NormalizeTool(name)] = n
	}
	return l
}

// Options turns the configuration into factory options.
func (c Config) Options() []Option {
	opts := []Option{
		WithAdapter(c.Store.Adapter),
		WithLimits(c.ShapeLimits()),
	}
	if c.Store.Key != "" {
		opts = append(opts, WithStoreKey(c.Store.Key))
	}
	if c.Store.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Store.Versioning))
	}
	return opts
}

// NewLogger builds the process logger from the log section.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(c.Level)}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
