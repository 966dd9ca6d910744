// Package build provides the image build command.
package build

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/schmitthub/clawker/internal/cmdutil"
	"github.com/schmitthub/clawker/internal/config"
	"github.com/schmitthub/clawker/internal/docker"
	"github.com/schmitthub/clawker/internal/iostreams"
	"github.com/schmitthub/clawker/internal/logger"
	"github.com/schmitthub/clawker/internal/signals"
	"github.com/schmitthub/clawker/internal/tui"
	"github.com/schmitthub/clawker/pkg/whail"
	"github.com/spf13/cobra"
)

// BuildOptions contains the options for the build command.
type BuildOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() *config.Config
	Client    func(context.Context) (*docker.Client, error)
	TUI       *tui.TUI

	File      string   // -f, --file (Dockerfile path)
	Tags      []string // -t, --tag (multiple allowed)
	NoCache   bool     // --no-cache
	Pull      bool     // --pull
	BuildArgs []string // --build-arg KEY=VALUE
	Labels    []string // --label KEY=VALUE (user labels)
	Target    string   // --target
	Quiet     bool     // -q, --quiet
	Progress  string   // --progress (output formatting)
	Network   string   // --network
}

// NewCmdBuild creates the image build command.
func NewCmdBuild(f *cmdutil.Factory, runF func(context.Context, *BuildOptions) error) *cobra.Command {
	opts := &BuildOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Client:    f.Client,
		TUI:       f.TUI,
	}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an image from a clawker project",
		Long: `Builds a container image from a clawker project configuration.

The image is built from the project's clawker.yaml configuration,
generating a Dockerfile and building the image. Alternatively,
use -f/--file to specify a custom Dockerfile.

Multiple tags can be applied to the built image using -t/--tag.
Build-time variables can be passed using --build-arg.`,
		Example: `  # Build the project image
  clawker image build

  # Build without Docker cache
  clawker image build --no-cache

  # Build using a custom Dockerfile
  clawker image build -f ./Dockerfile.dev

  # Build with multiple tags
  clawker image build -t myapp:latest -t myapp:v1.0

  # Build with build arguments
  clawker image build --build-arg NODE_VERSION=20

  # Build a specific target stage
  clawker image build --target builder

  # Build quietly (suppress output)
  clawker image build -q

  # Always pull base image
  clawker image build --pull`,
		Annotations: map[string]string{
			cmdutil.AnnotationRequiresProject: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return buildRun(cmd.Context(), opts)
		},
	}

	// Docker CLI-compatible flags
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to Dockerfile (overrides build.dockerfile in config)")
	cmd.Flags().StringArrayVarP(&opts.Tags, "tag", "t", nil, "Name and optionally a tag (format: name:tag)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Do not use cache when building the image")
	cmd.Flags().BoolVar(&opts.Pull, "pull", false, "Always attempt to pull a newer version of the base image")
	cmd.Flags().StringArrayVar(&opts.BuildArgs, "build-arg", nil, "Set build-time variables (format: KEY=VALUE)")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "Set metadata for the image (format: KEY=VALUE)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "Set the target build stage to build")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress the build output")
	cmd.Flags().StringVar(&opts.Progress, "progress", "auto", "Set type of progress output (auto, plain, tty, none)")
	cmd.Flags().StringVar(&opts.Network, "network", "", "Set the networking mode for the RUN instructions during build")

	return cmd
}

func buildRun(ctx context.Context, opts *BuildOptions) error {
	ctx, cancel := signals.SetupSignalContext(ctx)
	defer cancel()

	ios := opts.IOStreams
	cs := ios.ColorScheme()

	// Get configuration
	cfgGateway := opts.Config()
	cfg := cfgGateway.Project

	// Get working directory from project root, or fall back to current directory
	wd := cfg.RootDir()
	if wd == "" {
		var wdErr error
		wd, wdErr = os.Getwd()
		if wdErr != nil {
			return fmt.Errorf("failed to get working directory: %w", wdErr)
		}
	}

	// Validate configuration
	validator := config.NewValidator(wd)
	if err := validator.Validate(cfg); err != nil {
		cmdutil.PrintError(ios, "Configuration validation failed")
		fmt.Fprintln(ios.ErrOut, err)
		return err
	}

	// Print any warnings
	for _, warning := range validator.Warnings() {
		cmdutil.PrintWarning(ios, "%s", warning)
	}

	// Handle Dockerfile path from -f/--file flag
	if opts.File != "" {
		cfg.Build.Dockerfile = opts.File
	}

	logger.Debug().
		Str("project", cfg.Project).
		Bool("no-cache", opts.NoCache).
		Bool("pull", opts.Pull).
		Str("target", opts.Target).
		Bool("quiet", opts.Quiet).
		Msg("starting build")

	// Connect to Docker
	client, err := opts.Client(ctx)
	if err != nil {
		cmdutil.HandleError(ios, err)
		return err
	}

	// Check BuildKit availability — cache mounts in Dockerfile require it
	var buildkitEnabled bool
	buildkitEnabled, bkErr := docker.BuildKitEnabled(ctx, client.APIClient)
	if bkErr != nil {
		logger.Warn().Err(bkErr).Msg("BuildKit detection failed")
	} else if !buildkitEnabled {
		cmdutil.PrintWarning(ios, "BuildKit is not available — cache mount directives will be ignored and builds may be slower\n")
	}

	// Determine image tag(s)
	imageTag := docker.ImageTag(cfg.Project)

	// Parse build args
	buildArgs := parseBuildArgs(opts.BuildArgs)

	// Merge user labels with clawker labels (clawker labels take precedence)
	userLabels, _ := parseKeyValuePairs(opts.Labels)
	clawkerLabels := docker.ImageLabels(cfg.Project, cfg.Version)
	labels := mergeLabels(userLabels, clawkerLabels)

	builder := docker.NewBuilder(client, cfg, wd)

	logger.Info().
		Str("project", cfg.Project).
		Str("image", imageTag).
		Msg("building container image")

	quiet := opts.Quiet || opts.Progress == "none"

	// Drive the build in a goroutine; progress events flow through the
	// channel into the shared progress display.
	stepCh := make(chan tui.ProgressStep, 64)
	var buildErr error
	go func() {
		defer close(stepCh)

		buildOpts := docker.BuilderOptions{
			NoCache:         opts.NoCache,
			Labels:          labels,
			Target:          opts.Target,
			Pull:            opts.Pull,
			SuppressOutput:  quiet,
			NetworkMode:     opts.Network,
			BuildArgs:       buildArgs,
			Tags:            opts.Tags,
			BuildKitEnabled: buildkitEnabled,
		}
		if !quiet {
			buildOpts.OnProgress = progressForwarder(stepCh)
		}

		buildErr = builder.Build(ctx, imageTag, buildOpts)
	}()

	if quiet {
		for range stepCh {
			// Drain silently.
		}
	} else {
		progressMode := opts.Progress
		if progressMode == "" {
			progressMode = "auto"
		}
		result := tui.RunProgress(ios, progressMode, tui.ProgressDisplayConfig{
			Title:          "Building",
			Subtitle:       imageTag,
			IsInternal:     whail.IsInternalStep,
			CleanName:      whail.CleanStepName,
			ParseGroup:     whail.ParseBuildStage,
			FormatDuration: whail.FormatBuildDuration,
		}, stepCh)
		if result.Err != nil {
			cmdutil.HandleError(ios, result.Err)
			return result.Err
		}
	}

	if buildErr != nil {
		cmdutil.HandleError(ios, buildErr)
		cmdutil.PrintNextSteps(ios,
			"Check your Dockerfile for syntax errors",
			"Ensure the base image exists and is accessible",
			"Run 'clawker build --no-cache' to rebuild from scratch",
			"Use '--progress=plain' for detailed build output",
		)
		return buildErr
	}

	if !opts.Quiet {
		if len(opts.Tags) > 0 {
			allTags := append([]string{imageTag}, opts.Tags...)
			fmt.Fprintf(ios.ErrOut, "%s Built image with tags: %s\n", cs.SuccessIcon(), strings.Join(allTags, ", "))
		} else {
			fmt.Fprintf(ios.ErrOut, "%s Built image: %s\n", cs.SuccessIcon(), imageTag)
		}
	}
	return nil
}

// progressForwarder translates build progress events into progress steps
// consumed by the shared progress display.
func progressForwarder(ch chan<- tui.ProgressStep) whail.BuildProgressFunc {
	return func(e whail.BuildProgressEvent) {
		ch <- tui.ProgressStep{
			ID:      e.StepID,
			Name:    e.StepName,
			Status:  progressStepStatus(e.Status),
			Cached:  e.Cached,
			Error:   e.Error,
			LogLine: e.LogLine,
		}
	}
}

// progressStepStatus maps build step lifecycle states onto display states.
func progressStepStatus(s whail.BuildStepStatus) tui.ProgressStepStatus {
	switch s {
	case whail.BuildStepRunning:
		return tui.StepRunning
	case whail.BuildStepComplete:
		return tui.StepComplete
	case whail.BuildStepCached:
		return tui.StepCached
	case whail.BuildStepError:
		return tui.StepError
	default:
		return tui.StepPending
	}
}

// parseBuildArgs parses KEY=VALUE build arguments into a map.
func parseBuildArgs(args []string) map[string]*string {
	if len(args) == 0 {
		return nil
	}
	result := make(map[string]*string)
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) == 2 {
			value := parts[1]
			result[parts[0]] = &value
		} else if len(parts) == 1 {
			// Allow KEY without value (uses env var)
			result[parts[0]] = nil
		}
	}
	return result
}

// parseKeyValuePairs parses KEY=VALUE pairs into a string map.
// Labels without '=' are logged as warnings, left out of the map, and
// returned as the second result.
func parseKeyValuePairs(pairs []string) (map[string]string, []string) {
	if len(pairs) == 0 {
		return nil, nil
	}
	result := make(map[string]string)
	var warnings []string
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		} else {
			warnings = append(warnings, pair)
		}
	}
	if len(warnings) > 0 {
		logger.Warn().
			Strs("invalid_labels", warnings).
			Msg("labels without '=' were ignored, use format KEY=VALUE")
	}
	return result, warnings
}

// mergeLabels merges user labels with clawker labels.
// Clawker labels take precedence over user labels.
func mergeLabels(userLabels, clawkerLabels map[string]string) map[string]string {
	result := make(map[string]string)

	// Add user labels first
	for k, v := range userLabels {
		result[k] = v
	}

	// Clawker labels override user labels
	for k, v := range clawkerLabels {
		result[k] = v
	}

	return result
}
