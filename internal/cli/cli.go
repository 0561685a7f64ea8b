// Package cli implements the layoutview command-line interface.
//
// The commands load a design (technology LEF, library LEFs and a DEF, in
// the YAML interchange form read by memdb) and either export the viewer
// snapshot, render parts of it with Graphviz, browse it interactively, or
// serve the upload API.
//
// # Commands
//
//   - snapshot: export the compact snapshot JSON and print a summary
//   - render: draw the layer stack or one net as DOT or SVG
//   - explore: browse instances, nets and layers in the terminal
//   - serve: run the HTTP upload service
//   - cache: manage the snapshot cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutview/pkg/buildinfo"
	"github.com/matzehuels/layoutview/pkg/cache"
	"github.com/matzehuels/layoutview/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "layoutview"

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
	Config Config

	configFile string
	verbose    bool
	nativeText bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
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
		Short:        "Layoutview turns LEF/DEF designs into viewer snapshots",
		Long:         `Layoutview loads a physical design (technology LEF, cell library LEFs and a DEF) and flattens it into the self-contained JSON snapshot a browser layout viewer draws. It can also render the layer stack and net connectivity, browse a design in the terminal, and serve the upload API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&c.nativeText, "native-text", false, "check DEF headers and classify LEF files as LEF/DEF text before loading")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $"+configEnv+" or ~/.config/"+appName+"/config.toml)")

	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file, applies the log level and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	path := c.configFile
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			return fmt.Errorf("locate config: %w", err)
		}
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, _ := cfg.logLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. An empty backend means
// the configured one.
func (c *CLI) newRunner(ctx context.Context, backend string) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, backend)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewDefaultKeyer()
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, c.Config.Cache.Prefix)
	}
	r := pipeline.NewRunner(cc, keyer, nil, nil, c.Logger)
	r.NativeText = c.nativeText
	if r.TTL, err = c.Config.cacheTTL(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, backend string) (cache.Cache, error) {
	if backend == "" {
		backend = c.Config.Cache.Backend
	}
	switch backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		if c.Config.Cache.RedisURL == "" {
			return nil, fmt.Errorf("cache backend redis needs [cache] redis_url")
		}
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL, appName+":")
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	case backendFile, "":
		dir, err := c.resolveCacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q (must be file, redis or none)", backend)
}

// =============================================================================
// Paths
// =============================================================================

// resolveCacheDir returns [cache] dir when set, else the XDG cache directory.
func (c *CLI) resolveCacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/layoutview/).
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
