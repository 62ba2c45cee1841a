// Package cli implements the ioschema command-line interface.
//
// # Commands
//
//   - generate: build a wiring diagram from a point list and a module selection
//   - cards: list the catalog grouped by brand and category
//   - template: show or replace the master diagram
//   - serve: run the HTTP API
//   - cache: manage the catalog lookup cache
//
// All commands accept --config to point at an ioschema.toml file; without
// it the nearest ioschema.toml above the working directory is used, if any.
// --verbose (-v) switches logging to debug level.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ioschema/pkg/buildinfo"
	"github.com/matzehuels/ioschema/pkg/config"
)

const appName = "ioschema"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "ioschema turns I/O point lists into wiring diagrams",
		Long:         `ioschema allocates a building-automation point list onto the selected controller, I/O cards and extensions, and assembles the matching draw.io wiring diagram from a master template.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to ioschema.toml")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "bypass the catalog lookup cache")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.cardsCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the explicit --config file, or the nearest ioschema.toml.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.Find(wd)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if c.noCache {
		cfg.Cache.Disabled = true
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path, "settings", cfg.String())
	}
	return cfg, nil
}

// withConfig loads the configuration and opens the backends for a command.
func (c *CLI) withConfig(ctx context.Context, opts appOptions, fn func(*app) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg, opts, c.Logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
