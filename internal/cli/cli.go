package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poolsynth/pkg/buildinfo"
	"github.com/matzehuels/poolsynth/pkg/cache"
	"github.com/matzehuels/poolsynth/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "poolsynth"

	// defaultConfigFile is loaded when --config is not given and the file exists.
	defaultConfigFile = "poolsynth.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath and overrides are bound to persistent flags.
	configPath string
	overrides  []string
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
		Use:   appName,
		Short: "poolsynth generates synthetic pool-table detection datasets",
		Long: `poolsynth renders randomized pool-table scenes and writes them as a YOLO
object-detection dataset: JPEG frames, one label file per frame, and a
data.yaml describing the classes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml); defaults to ./"+defaultConfigFile+" if present")
	root.PersistentFlags().StringArrayVar(&c.overrides, "set", nil, "override a config key, e.g. --set camera.fov=70 (repeatable)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.checkpointCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig resolves the effective configuration: defaults, then the config
// file, then POOLSYNTH_* environment variables (after loading .env), then
// --set overrides. The result is validated.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}

	if err := config.LoadDotEnv(""); err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg, os.Environ()); err != nil {
		return cfg, err
	}
	if err := config.ApplyOverrides(&cfg, c.overrides); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// =============================================================================
// Checkpoint Store
// =============================================================================

// openStore returns the checkpoint store for a dataset: Redis when redisURL
// is set, otherwise a file store under <output>/.checkpoints.
func (c *CLI) openStore(ctx context.Context, output, redisURL string) (cache.Cache, error) {
	if redisURL != "" {
		spin := newSpinnerWithContext(ctx, "Connecting to checkpoint store...")
		spin.Start()
		store, err := cache.NewRedisCache(ctx, redisURL)
		spin.Stop()
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := cache.NewFileCache(checkpointDir(output))
	if err != nil {
		return nil, err
	}
	return store, nil
}

// checkpointDir returns the file checkpoint directory of a dataset.
func checkpointDir(output string) string {
	return filepath.Join(output, cache.CheckpointDir)
}
