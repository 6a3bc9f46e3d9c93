package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jscadpack/pkg/buildinfo"
	"github.com/matzehuels/jscadpack/pkg/cache"
	"github.com/matzehuels/jscadpack/pkg/config"
	"github.com/matzehuels/jscadpack/pkg/deps/javascript"
	"github.com/matzehuels/jscadpack/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// redisKeyPrefix scopes cache keys inside a shared Redis database.
	redisKeyPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer // Command output (stdout by default)

	cfg   config.Config
	flags globalFlags
}

// globalFlags holds the persistent flags shared by all commands.
type globalFlags struct {
	configPath string
	dir        string
	maxPasses  int
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "jscadpack bundles JSCAD libraries in dependency order",
		Long:         `jscadpack reads a project's package.json, orders the installed packages so that every package follows its dependencies, and concatenates the files of every JSCAD library (packages shipping a jscad.json) in that order.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/jscadpack/config.toml)")
	pf.StringVar(&c.flags.dir, "dir", "", "project directory containing node_modules (default: .)")
	pf.IntVar(&c.flags.maxPasses, "max-passes", 0, "sorting pass limit, negative for no limit (default: 10)")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.bundleCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies the flags that were set on
// the command line.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}

	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("dir") {
		o.Dir = &c.flags.dir
	}
	if flags.Changed("max-passes") {
		o.MaxPasses = &c.flags.maxPasses
	}
	o.NoCache = c.flags.noCache

	c.cfg = cfg.Apply(o)
	if c.cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", c.cfg.Path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, keyer, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil, nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: c.cfg.Cache.RedisAddr,
			DB:   c.cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using redis cache", "addr", c.cfg.Cache.RedisAddr, "db", c.cfg.Cache.RedisDB)
		return rc, cache.NewScopedKeyer(nil, redisKeyPrefix), nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil, nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		return fc, nil, nil
	}
}

// pipelineOptions converts the loaded configuration into run options.
func (c *CLI) pipelineOptions() (pipeline.Options, error) {
	ttl, err := c.cfg.CacheTTL()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Dir:       c.cfg.Dir,
		MaxPasses: c.cfg.MaxPasses,
		CacheTTL:  ttl,
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured file cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/jscadpack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input
// =============================================================================

// readManifest reads the project manifest. With no argument it reads
// package.json in the project directory; "-" reads stdin.
func (c *CLI) readManifest(cmd *cobra.Command, args []string) ([]byte, error) {
	path := filepath.Join(c.cfg.Dir, javascript.ManifestFile)
	if len(args) > 0 {
		path = args[0]
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return data, nil
}
