// Package cli implements the scormlens command-line interface.
//
// This package provides commands for inspecting SCORM packages, exporting
// their content map and findings, rendering the course hierarchy, browsing
// an analysis interactively and serving the HTTP API. The CLI is built
// using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - inspect: Print summary, findings, content map, tree or raw manifest
//   - export: Write CSV, PDF or JSON downloads
//   - render: Draw the item hierarchy as DOT, SVG or a text tree
//   - view: Browse an analysis in a tabbed terminal viewer
//   - serve: Run the HTTP API
//   - cache, config: Manage the result cache and configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scormlens/pkg/buildinfo"
	"github.com/matzehuels/scormlens/pkg/cache"
	"github.com/matzehuels/scormlens/pkg/config"
	"github.com/matzehuels/scormlens/pkg/httputil"
	"github.com/matzehuels/scormlens/pkg/observability"
	"github.com/matzehuels/scormlens/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

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

	configPath string
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "scormlens inspects and validates SCORM packages",
		Long: `scormlens opens SCORM 1.2 and SCORM 2004 packages, extracts the course
metadata and structure from imsmanifest.xml, checks every reference against
the files in the archive and reports what is broken.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/scormlens/config.toml)")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default file when it exists, and
// registers log hooks for pipeline, cache and download events.
func (c *CLI) loadConfig() error {
	var (
		cfg  config.Config
		path string
		err  error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
		path = c.configPath
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	c.config = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}

	hooks := &logHooks{logger: c.Logger}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.config.Cache.Prefix)
	}
	r := pipeline.NewRunner(store, keyer, c.Logger)
	r.Client = httputil.NewClient(httputil.Options{
		Timeout:  c.config.HTTP.Timeout.Duration,
		Attempts: c.config.HTTP.Attempts,
	})
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, c.config.Cache.RedisURL)
	}
	dir, err := c.config.CacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// analysisOptions holds the flags shared by every command that analyzes a
// package.
type analysisOptions struct {
	noCache bool
	refresh bool
	maxSize int64
	name    string
}

func (o *analysisOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().Int64Var(&o.maxSize, "max-size", 0, "reject archives that inflate beyond this many bytes (default from config)")
	cmd.Flags().StringVar(&o.name, "name", "", "package name shown in reports (default: file or URL base name)")
}

func (c *CLI) pipelineOptions(o analysisOptions) pipeline.Options {
	limit := o.maxSize
	if limit == 0 {
		limit = c.config.Limits.MaxUncompressedBytes
	}
	return pipeline.Options{
		Source:               o.name,
		MaxUncompressedBytes: limit,
		Refresh:              o.refresh,
		Logger:               c.Logger,
	}
}
