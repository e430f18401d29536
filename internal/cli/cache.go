package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NiklasRosenstein/slap-sub001/pkg/cache"
)

// cacheCommand creates the "cache" command group.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the HTTP response cache",
		Long: `Cache manages the local cache of PyPI, SPDX and GitHub responses. The
cache lives under the user cache directory; set ` + cache.EnvRedisAddr + ` to
use a shared Redis instance instead.`,
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// cacheInfoCommand creates the "cache info" command.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := openFileCache()
			if err != nil {
				return err
			}
			defer files.Close()

			stats, err := files.Stats()
			if err != nil {
				return err
			}
			printKeyValue("directory", stats.Dir)
			printKeyValue("entries", fmt.Sprintf("%d", stats.Entries))
			printKeyValue("size", formatBytes(stats.Bytes))
			if addr := os.Getenv(cache.EnvRedisAddr); addr != "" {
				printKeyValue("redis", addr)
			}
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" command.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := openFileCache()
			if err != nil {
				return err
			}
			defer files.Close()

			stats, err := files.Stats()
			if err != nil {
				return err
			}
			if err := files.Clear(); err != nil {
				return err
			}
			printSuccess("cleared %d entries (%s)", stats.Entries, formatBytes(stats.Bytes))
			return nil
		},
	}
}

func openFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
