// Package config loads jscadpack settings from a TOML file.
//
// Lookup order for the file:
//  1. An explicit path (the --config flag); it must exist.
//  2. $XDG_CONFIG_HOME/jscadpack/config.toml, or ~/.config/jscadpack/config.toml.
//  3. Built-in defaults when no file is found.
//
// Command-line flags override file values; see [Config.Apply].
//
// # Example
//
//	dir = "examples/bolt"
//	max_passes = 20
//
//	[cache]
//	backend = "redis"
//	ttl = "30m"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
//	[bundle]
//	header = true
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/jscadpack/pkg/errors"
)

// AppName is the directory name used under XDG config and cache homes.
const AppName = "jscadpack"

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds all settings.
type Config struct {
	Dir       string `toml:"dir"`        // Project directory containing node_modules
	MaxPasses int    `toml:"max_passes"` // Sorting pass limit; negative disables the cap

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Bundle BundleConfig `toml:"bundle"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file, redis or none
	TTL       string `toml:"ttl"`     // Ordering TTL as a Go duration
	Dir       string `toml:"dir"`     // File cache directory
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// BundleConfig configures bundle output.
type BundleConfig struct {
	Header bool `toml:"header"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dir:       ".",
		MaxPasses: 10,
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       "10m",
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the config at path. An empty path searches the default
// location and falls back to [Default] when nothing is there. Values
// missing from the file keep their defaults.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath returns the default config file location, or "" when no
// config home can be determined.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName, FileName)
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "cache.backend: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Cache.RedisDB < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_db: must not be negative")
	}
	return nil
}

// CacheTTL parses Cache.TTL. An empty value means zero, which callers treat
// as their own default.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errs.New(errs.ErrCodeInvalidConfig, "cache.ttl: invalid duration %q", c.Cache.TTL)
	}
	return d, nil
}

// Overrides holds flag values. Nil fields were not set on the command line.
type Overrides struct {
	Dir       *string
	MaxPasses *int
	NoCache   bool
	Header    *bool
	Addr      *string
}

// Apply returns a copy of c with the set overrides applied.
func (c Config) Apply(o Overrides) Config {
	if o.Dir != nil {
		c.Dir = *o.Dir
	}
	if o.MaxPasses != nil {
		c.MaxPasses = *o.MaxPasses
	}
	if o.NoCache {
		c.Cache.Backend = BackendNone
	}
	if o.Header != nil {
		c.Bundle.Header = *o.Header
	}
	if o.Addr != nil {
		c.Server.Addr = *o.Addr
	}
	return c
}
