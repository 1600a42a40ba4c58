// Package cli implements the inklet command-line interface.
//
// This package provides commands for inspecting, converting, validating,
// rendering and editing diagram documents, plus a document server. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
//   - inspect: Summarize a document (pages, elements, metadata)
//   - convert: Rewrite a document between compressed and plain payloads
//   - validate: Check a document for dangling references
//   - render: Generate DOT, SVG, or PNG views of a page
//   - edit: Interactive terminal editor with undo/redo
//   - serve: Run the document HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/inklet/inklet/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/inklet/inklet/pkg/buildinfo"
	"github.com/inklet/inklet/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "inklet"
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
	Config *Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration file is loaded in PersistentPreRunE so that --config can
// point at an alternate file.
func (c *CLI) RootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "inklet",
		Short:        "Inklet reads, edits, and writes diagram documents",
		Long:         `Inklet is a CLI tool for working with XML diagram documents: inspecting their structure, converting payload encodings, validating references, rendering pages, and editing them interactively with full undo history.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return err
			}
			c.Config = cfg
			ctx := withLogger(cmd.Context(), c.Logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/inklet/config.toml)")

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Factory
// =============================================================================

// newStore builds the document store selected by the configuration.
// Remote backends dial eagerly so misconfiguration surfaces at startup.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	switch cfg.Backend {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			var err error
			dir, err = dataDir()
			if err != nil {
				return nil, err
			}
		}
		return store.NewFileStore(dir)
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	default:
		return nil, errUnknownBackend(cfg.Backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the document directory using XDG standard
// (~/.local/share/inklet/documents/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "documents"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "documents"), nil
}

// configPath returns the default config file path using XDG standard
// (~/.config/inklet/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
