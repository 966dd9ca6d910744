package root

import (
	"fmt"
	"os"

	"github.com/schmitthub/clawker/internal/cmd/config"
	"github.com/schmitthub/clawker/internal/cmd/image"
	"github.com/schmitthub/clawker/internal/cmdutil"
	internalconfig "github.com/schmitthub/clawker/internal/config"
	"github.com/schmitthub/clawker/internal/logger"
	"github.com/spf13/cobra"
)

// NewCmdRoot creates the root command for the clawker CLI.
func NewCmdRoot(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clawker",
		Short: "Manage Claude Code in secure Docker containers with clawker",
		Long: `Clawker (claude + docker) wraps Claude Code in safe, reproducible, monitored, isolated Docker containers.

Image commands:
  clawker image build           # Build a project image from clawker.yaml
  clawker image buildkit-trace  # Build via the raw BuildKit response decoder
  clawker image list            # List clawker-managed images
  clawker config check          # Validate clawker.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger with file logging if possible
			initializeLogger(f.Debug)

			// Set working directory
			if f.WorkDir == "" {
				var err error
				f.WorkDir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
			}

			// Set build output directory to CLAWKER_HOME/build
			if f.BuildOutputDir == "" {
				var err error
				f.BuildOutputDir, err = internalconfig.BuildDir()
				if err != nil {
					return fmt.Errorf("failed to determine build directory: %w", err)
				}
			}

			logger.Debug().
				Str("version", f.Version).
				Str("workdir", f.WorkDir).
				Str("build-output-dir", f.BuildOutputDir).
				Bool("debug", f.Debug).
				Msg("clawker starting")

			return nil
		},
		Version: f.Version,
	}

	// Global flags bound to Factory
	cmd.PersistentFlags().BoolVarP(&f.Debug, "debug", "D", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&f.WorkDir, "workdir", "w", "", "Working directory (default: current directory)")

	// Version template
	cmd.SetVersionTemplate(fmt.Sprintf("clawker %s (commit: %s)\n", f.Version, f.Commit))

	// Register top-level aliases (shortcuts to subcommands)
	registerAliases(cmd, f)

	// Add top-level commands
	cmd.AddCommand(config.NewCmdConfig(f))
	cmd.AddCommand(image.NewCmdImage(f))

	return cmd
}

// initializeLogger sets up the logger with file logging if possible.
// Falls back to a nop logger on any errors; the --debug flag only widens
// what commands themselves report, file logs always capture debug level.
func initializeLogger(debug bool) {
	// Try to load settings for logging config
	loader, err := internalconfig.NewSettingsLoader()
	if err != nil {
		// Fall back to console-only logging
		logger.Init()
		logger.Warn().Err(err).Msg("file logging unavailable: failed to create settings loader")
		return
	}

	settings, err := loader.Load()
	if err != nil {
		// Fall back to console-only logging
		logger.Init()
		logger.Warn().Err(err).Msg("file logging unavailable: failed to load settings")
		return
	}

	// Get logs directory
	logsDir, err := internalconfig.LogsDir()
	if err != nil {
		// Fall back to console-only logging
		logger.Init()
		logger.Warn().Err(err).Msg("file logging unavailable: failed to get logs directory")
		return
	}

	// Convert settings.Logging to logger.LoggingConfig
	logCfg := &logger.LoggingConfig{
		FileEnabled: settings.Logging.FileEnabled,
		MaxSizeMB:   settings.Logging.MaxSizeMB,
		MaxAgeDays:  settings.Logging.MaxAgeDays,
		MaxBackups:  settings.Logging.MaxBackups,
	}

	// Initialize with file logging
	if err := logger.InitWithFile(logsDir, logCfg); err != nil {
		// Fall back to console-only on error
		logger.Init()
		logger.Warn().Err(err).Msg("file logging unavailable: failed to initialize file writer")
	}
}
