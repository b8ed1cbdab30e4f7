// Package cli implements the stackpip command-line interface.
//
// Commands load a task file (stackpip.toml by default, see -f), narrow the
// task queue with the shared selection flags and then list, plan, run or
// draw it. Run history and the index response cache are managed by the
// history and cache commands; serve exposes the resolver over HTTP.
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/buildinfo"
	"github.com/matzehuels/stackpip/pkg/cache"
	"github.com/matzehuels/stackpip/pkg/config"
	errs "github.com/matzehuels/stackpip/pkg/errors"
	"github.com/matzehuels/stackpip/pkg/observability"
	"github.com/matzehuels/stackpip/pkg/report"
	"github.com/matzehuels/stackpip/pkg/taskfile"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "stackpip"

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
	Logger   *log.Logger
	Taskfile string // Path given with -f
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Taskfile: taskfile.DefaultName,
	}
}

// SetLogLevel updates the logger's level. At debug level, cache and HTTP
// events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerDebugHooks(c.Logger)
	} else {
		observability.Reset()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "stackpip runs Python install tasks in dependency order",
		Long:         `stackpip reads install tasks from stackpip.toml, orders them by what they require, and plans each task's installs from the pinned distributions in poetry.lock.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.Taskfile, "file", "f", c.Taskfile, "task file to load")

	// Register all subcommands
	root.AddCommand(c.listCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// FormatError renders an error for the terminal, prefixed with its code
// when it has a known one.
func FormatError(err error) string {
	code := errs.Classify(err)
	if code == "" || code == errs.ErrCodeInternal {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Error [%s]: %s", code, errs.UserMessage(err))
}

// =============================================================================
// Backends
// =============================================================================

// newCache returns the response cache selected by cfg: Redis when an
// address is configured, the file cache otherwise.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisAddr != "" {
		c.Logger.Debug("using redis cache", "addr", cfg.RedisAddr)
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
	}
	if cfg.CacheDir == "" {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.CacheDir)
}

// newStore returns the run history store selected by cfg: MongoDB when a
// URI is configured, JSON files otherwise.
func (c *CLI) newStore(ctx context.Context, cfg config.Config) (report.Store, error) {
	if cfg.MongoURI != "" {
		c.Logger.Debug("using mongo history", "database", cfg.MongoDatabase)
		return report.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
	if cfg.HistoryDir == "" {
		return report.NewNullStore(), nil
	}
	return report.NewFileStore(cfg.HistoryDir)
}
