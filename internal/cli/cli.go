// Package cli implements the slap command-line interface.
//
// This package provides commands for sanity-checking Python projects,
// managing structured changelogs, bumping version numbers across every file
// that mentions them, and installing, building and publishing projects in
// dependency order. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - check: Sanity-check the repository and each project
//   - release: Bump version numbers and tag a release
//   - log: Manage structured TOML changelogs
//   - info: Show repository and project metadata
//   - graph: Show the interproject dependency graph
//   - install: Install projects with pip in dependency order
//   - publish: Build and upload distributions
//   - cache: Manage the HTTP response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
//
// # Example
//
//	import "github.com/NiklasRosenstein/slap-sub001/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/NiklasRosenstein/slap-sub001/pkg/buildinfo"
	"github.com/NiklasRosenstein/slap-sub001/pkg/cache"
	"github.com/NiklasRosenstein/slap-sub001/pkg/project"
)

const (
	// appName is the application name used for directories and display.
	appName = "slap"

	// apiCacheTTL is how long PyPI, SPDX and GitHub responses stay fresh.
	apiCacheTTL = 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "slap",
		Short:        "Slap manages the release lifecycle of Python projects",
		Long:         `Slap is a CLI tool for developing and releasing Python projects and monorepos: it keeps version numbers consistent across files, maintains structured changelogs, and installs, builds and publishes projects in dependency order.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.releaseCommand())
	root.AddCommand(c.changelogCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// openRepository loads the repository containing the working directory. The
// repository root is the closest ancestor carrying a slap.toml, pyproject.toml
// or .git entry; the working directory itself when none is found.
func openRepository() (*project.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return project.Load(findRoot(cwd))
}

func findRoot(dir string) string {
	for current := dir; ; {
		for _, marker := range []string{"slap.toml", "pyproject.toml", ".git"} {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// newBackend creates the cache backend for API clients: a file cache in the
// user cache directory, or Redis when SLAP_REDIS_ADDR is set. Errors degrade
// to a null cache so network commands still work.
func newBackend(ctx context.Context) cache.Cache {
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	files, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	backend, err := cache.FromEnv(ctx, files)
	if err != nil {
		return files
	}
	return backend
}

// cacheDir returns the cache directory using XDG standard (~/.cache/slap/).
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
