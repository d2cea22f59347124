package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ch, err := c.newCache(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer ch.Close()

			cl, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			n, err := cl.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", cfg.Cache.Backend)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where layouts are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch cfg.Cache.Backend {
			case config.BackendNone:
				fmt.Fprintln(out, "disabled")
			case config.BackendRedis:
				prefix := cfg.Cache.Prefix
				if prefix == "" {
					prefix = cache.DefaultRedisPrefix
				}
				fmt.Fprintf(out, "redis://%s/%d %s*\n", cfg.Cache.RedisAddr, cfg.Cache.RedisDB, prefix)
			default:
				dir, err := cfg.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(out, dir)
			}
			return nil
		},
	}
}
