// Package buildkit provides the image buildkit-trace command, an
// alternative to `image build` that decodes a BuildKit-enabled daemon's
// raw moby.buildkit.trace envelopes directly instead of going through
// whail's gRPC Solve path.
package buildkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schmitthub/clawker/internal/cmdutil"
	"github.com/schmitthub/clawker/internal/config"
	"github.com/schmitthub/clawker/internal/docker"
	"github.com/schmitthub/clawker/internal/iostreams"
	"github.com/schmitthub/clawker/internal/logger"
	"github.com/schmitthub/clawker/internal/signals"
	"github.com/schmitthub/clawker/internal/tui"
	bktrace "github.com/schmitthub/clawker/pkg/whail/buildkit"
)

// Options contains the options for the buildkit-trace command.
type Options struct {
	IOStreams *iostreams.IOStreams
	Config    func() *config.Config
	Client    func(context.Context) (*docker.Client, error)

	File      string
	Tags      []string
	NoCache   bool
	Pull      bool
	BuildArgs []string
	Labels    []string
	Target    string
	Quiet     bool
	Progress  string // auto, plain, tty, quiet
	Network   string
}

// NewCmd creates the image buildkit-trace command.
func NewCmd(f *cmdutil.Factory, runF func(context.Context, *Options) error) *cobra.Command {
	opts := &Options{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Client:    f.Client,
	}

	cmd := &cobra.Command{
		Use:   "buildkit-trace",
		Short: "Build an image, decoding the raw BuildKit trace stream directly",
		Long: `Builds a container image the same way 'image build' does, but decodes
the daemon's moby.buildkit.trace response envelopes directly instead of
opening a BuildKit gRPC Solve session.

This exists alongside 'image build' rather than replacing it: it exercises
the classic Docker Engine API ImageBuild endpoint, which is the path taken
by tools that don't hold their own BuildKit client connection.`,
		Example: `  # Build using the raw trace decoder
  clawker image buildkit-trace

  # Force plain-text transcript output
  clawker image buildkit-trace --progress=plain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to Dockerfile (overrides build.dockerfile in config)")
	cmd.Flags().StringArrayVarP(&opts.Tags, "tag", "t", nil, "Name and optionally a tag (format: name:tag)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Do not use cache when building the image")
	cmd.Flags().BoolVar(&opts.Pull, "pull", false, "Always attempt to pull a newer version of the base image")
	cmd.Flags().StringArrayVar(&opts.BuildArgs, "build-arg", nil, "Set build-time variables (format: KEY=VALUE)")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "Set metadata for the image (format: KEY=VALUE)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "Set the target build stage to build")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress the build output")
	cmd.Flags().StringVar(&opts.Progress, "progress", "auto", "Set type of progress output (auto, plain, tty, quiet)")
	cmd.Flags().StringVar(&opts.Network, "network", "", "Set the networking mode for the RUN instructions during build")

	return cmd
}

func run(ctx context.Context, opts *Options) error {
	ctx, cancel := signals.SetupSignalContext(ctx)
	defer cancel()

	ios := opts.IOStreams
	cs := ios.ColorScheme()

	cfgGateway := opts.Config()
	cfg := cfgGateway.Project

	wd := cfg.RootDir()
	if wd == "" {
		var wdErr error
		wd, wdErr = os.Getwd()
		if wdErr != nil {
			return fmt.Errorf("failed to get working directory: %w", wdErr)
		}
	}

	validator := config.NewValidator(wd)
	if err := validator.Validate(cfg); err != nil {
		cmdutil.PrintError(ios, "Configuration validation failed")
		fmt.Fprintln(ios.ErrOut, err)
		return err
	}
	for _, warning := range validator.Warnings() {
		cmdutil.PrintWarning(ios, "%s", warning)
	}

	if opts.File != "" {
		cfg.Build.Dockerfile = opts.File
	}

	client, err := opts.Client(ctx)
	if err != nil {
		cmdutil.HandleError(ios, err)
		return err
	}

	buildkitEnabled, bkErr := docker.BuildKitEnabled(ctx, client.APIClient)
	if bkErr != nil {
		logger.Warn().Err(bkErr).Msg("BuildKit detection failed")
	} else if !buildkitEnabled {
		cmdutil.PrintWarning(ios, "BuildKit is not available — the raw trace decoder requires a BuildKit-enabled daemon\n")
	}

	imageTag := docker.ImageTag(cfg.Project)
	buildArgs := parseBuildArgs(opts.BuildArgs)
	userLabels := parseKeyValuePairs(opts.Labels)
	clawkerLabels := docker.ImageLabels(cfg.Project, cfg.Version)
	labels := mergeLabels(userLabels, clawkerLabels)

	builder := docker.NewBuilder(client, cfg, wd)

	logger.Info().
		Str("project", cfg.Project).
		Str("image", imageTag).
		Msg("building container image via raw trace decoder")

	quiet := opts.Quiet || opts.Progress == "quiet"

	stepCh := make(chan tui.ProgressStep)
	var buildErr error
	go func() {
		defer close(stepCh)

		buildOpts := docker.BuilderOptions{
			NoCache:            opts.NoCache,
			Labels:             labels,
			Target:             opts.Target,
			Pull:               opts.Pull,
			SuppressOutput:     quiet,
			NetworkMode:        opts.Network,
			BuildArgs:          buildArgs,
			Tags:               opts.Tags,
			BuildKitEnabled:    buildkitEnabled,
			UseRawTraceDecoder: true,
			TranscriptOut:      transcriptSink(quiet, ios),
			OnBuildEvent:       eventForwarder(stepCh),
		}

		buildErr = builder.Build(ctx, imageTag, buildOpts)
	}()

	if !quiet {
		progressMode := opts.Progress
		if progressMode == "" {
			progressMode = "auto"
		}
		result := tui.RunProgress(ios, progressMode, tui.ProgressDisplayConfig{
			Title:    "Building",
			Subtitle: imageTag,
		}, stepCh)
		if result.Err != nil {
			cmdutil.HandleError(ios, result.Err)
			return result.Err
		}
	} else {
		for range stepCh {
			// Drain silently; transcript was written directly to ios.Out.
		}
	}

	if buildErr != nil {
		cmdutil.HandleError(ios, buildErr)
		cmdutil.PrintNextSteps(ios,
			"Check your Dockerfile for syntax errors",
			"Ensure the base image exists and is accessible",
			"Run with '--progress=plain' for detailed build output",
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

// transcriptSink returns ios.Out as the transcript sink in quiet mode
// (where no bubbletea sidebar competes for the terminal), and nil
// (buildkit.Decoder discards the transcript) whenever the TUI sidebar
// owns the screen.
func transcriptSink(quiet bool, ios *iostreams.IOStreams) io.Writer {
	if quiet {
		return ios.Out
	}
	return nil
}

// eventForwarder translates buildkit.BuildEvent values into tui.ProgressStep
// updates. BuildProgress snapshots are fanned out into one ProgressStep per
// active vertex; BuildError and BuildComplete each become a single log line.
// No step is marked failed for a BuildError.
func eventForwarder(ch chan<- tui.ProgressStep) func(bktrace.BuildEvent) {
	return func(evt bktrace.BuildEvent) {
		switch e := evt.(type) {
		case bktrace.BuildProgress:
			for _, step := range e.ActiveSteps {
				s := tui.ProgressStep{
					ID:     fmt.Sprintf("%d", step.StepIndex),
					Name:   step.Name,
					Status: tui.StepRunning,
				}
				if step.HasLayers {
					s.LogLine = fmt.Sprintf("%s: %s %d/%d bytes", step.Name, step.Operation, step.Completed, step.Total)
				}
				ch <- s
			}
		case bktrace.BuildError:
			ch <- tui.ProgressStep{LogLine: "error: " + e.Message}
		case bktrace.BuildComplete:
			ch <- tui.ProgressStep{LogLine: "built " + e.ImageID}
		}
	}
}

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
			result[parts[0]] = nil
		}
	}
	return result
}

func parseKeyValuePairs(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
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
	return result
}

func mergeLabels(userLabels, clawkerLabels map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range userLabels {
		result[k] = v
	}
	for k, v := range clawkerLabels {
		result[k] = v
	}
	return result
}
