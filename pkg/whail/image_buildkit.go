package whail

import "context"

// BuildStepStatus is the lifecycle state of one build step (vertex) as
// reported to a BuildProgressFunc callback.
type BuildStepStatus int

const (
	BuildStepPending BuildStepStatus = iota
	BuildStepRunning
	BuildStepComplete
	BuildStepCached
	BuildStepError
)

// BuildProgressEvent is a single progress notification delivered while an
// image build is in flight, covering both per-vertex lifecycle transitions
// and individual log lines.
type BuildProgressEvent struct {
	StepID     string
	StepName   string
	StepIndex  int
	TotalSteps int
	Status     BuildStepStatus
	Cached     bool
	Error      string
	LogLine    string
}

// BuildProgressFunc receives build progress notifications. Implementations
// must not block for long: callers invoke it synchronously from the
// decode/drain loop.
type BuildProgressFunc func(BuildProgressEvent)

// ImageBuildKitOptions configures a BuildKit-driven image build.
type ImageBuildKitOptions struct {
	Tags            []string
	ContextDir      string
	Dockerfile      string
	BuildArgs       map[string]*string
	NoCache         bool
	Labels          map[string]string
	Target          string
	Pull            bool
	SuppressOutput  bool
	NetworkMode     string
	OnProgress      BuildProgressFunc

	// UseRawTraceDecoder routes the build through the Docker Engine API's
	// classic /build endpoint (BuildKit enabled via session) instead of a
	// native BuildKit gRPC Solve call, decoding the response body with
	// pkg/whail/buildkit.Decoder. Callers outside this package are
	// responsible for performing that request and decode; this flag only
	// documents the option for BuildImageOpts-level callers (see
	// internal/docker.BuildImageOpts) since whail cannot itself import
	// pkg/whail/buildkit without an import cycle.
	UseRawTraceDecoder bool
}

// ImageBuildKit builds an image using BuildKit. The actual Solve
// implementation is supplied by BuildKitImageBuilder (set by the caller,
// typically via pkg/whail/buildkit.NewImageBuilder) to keep whail itself
// free of BuildKit's dependency tree.
//
// Labels passed in opts are merged with the engine's managed labels before
// the builder closure is invoked, so BuildKitImageBuilder always receives
// fully-resolved labels.
func (e *Engine) ImageBuildKit(ctx context.Context, opts ImageBuildKitOptions) error {
	if e.BuildKitImageBuilder == nil {
		return ErrImageBuildFailed(errNoBuildKitBuilder)
	}

	opts.Labels = e.imageLabels(opts.Labels)
	if err := e.BuildKitImageBuilder(ctx, opts); err != nil {
		return ErrImageBuildFailed(err)
	}
	return nil
}

type noBuildKitBuilderError struct{}

func (noBuildKitBuilderError) Error() string {
	return "whail: Engine.BuildKitImageBuilder is not set"
}

var errNoBuildKitBuilder error = noBuildKitBuilderError{}
