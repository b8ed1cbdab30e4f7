package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/config"
	"github.com/matzehuels/stackpip/pkg/taskfile"
)

// pruner is implemented by backends that keep expired entries around.
type pruner interface {
	Prune(ctx context.Context) (int, error)
}

// cacheCommand creates the cache command and its subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached package index responses",
		Long: `Manage cached package index responses.

The cache lives in a directory (see "cache path") unless redis-addr or
STACKPIP_REDIS_ADDR selects a shared Redis instance.`,
	}
	cmd.AddCommand(
		c.cacheEvictCommand("clear", "Remove every cached response", false),
		c.cacheEvictCommand("prune", "Remove expired cached responses", true),
		c.cachePathCommand(),
	)
	return cmd
}

// cacheSettings returns the project's settings, or environment-only
// settings when there is no task file.
func (c *CLI) cacheSettings() config.Config {
	f, err := taskfile.Load(c.Taskfile)
	if err != nil {
		c.Logger.Debug("no task file, using default cache settings", "err", err)
		return config.Config{}.ApplyEnv(os.Getenv).WithDefaults()
	}
	return f.Config()
}

// cacheEvictCommand builds clear and prune, which differ only in whether
// live entries survive.
func (c *CLI) cacheEvictCommand(use, short string, expiredOnly bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.cacheSettings()
			backend, err := c.newCache(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer backend.Close()

			var n int
			if expiredOnly {
				p, ok := backend.(pruner)
				if !ok {
					printInfo("Backend expires entries itself, nothing to prune")
					return nil
				}
				n, err = p.Prune(ctx)
			} else {
				n, err = backend.Clear(ctx)
			}
			if err != nil {
				return err
			}

			if n == 0 {
				printInfo("Nothing to remove")
				return nil
			}
			printSuccess("Removed %d cached responses", n)
			if cfg.RedisAddr != "" {
				printDetail("Redis: %s", cfg.RedisAddr)
			} else {
				printDetail("Directory: %s", cfg.CacheDir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cacheSettings()
			if cfg.CacheDir == "" {
				return fmt.Errorf("no cache directory configured")
			}
			fmt.Println(cfg.CacheDir)
			return nil
		},
	}
}
