package buildkit

// BuildEvent is one of the three structured events the decoder emits
// through its callback: BuildError, BuildComplete, BuildProgress.
type BuildEvent interface {
	isBuildEvent()
}

// BuildError reports a daemon-side build failure observed on the wire. It
// is a non-fatal event: decoding continues to end of stream.
type BuildError struct {
	Message string
}

func (BuildError) isBuildEvent() {}

// BuildComplete reports the final image id from a successful build.
type BuildComplete struct {
	ImageID string
}

func (BuildComplete) isBuildEvent() {}

// BuildProgress carries a snapshot of currently active build steps,
// emitted at most once per StatusResponse, only when the set changed.
type BuildProgress struct {
	ActiveSteps []ActiveImageBuildStep
}

func (BuildProgress) isBuildEvent() {}

// ActiveImageBuildStep describes one currently active vertex for progress
// reporting purposes. Exactly one of the two shapes applies: a step
// with no layers reports NotDownloading; a step with layers reports
// Downloading with the operation being reported on and its byte counts.
type ActiveImageBuildStep struct {
	StepIndex int
	Name      string

	// HasLayers is false for steps with no tracked layers — the
	// NotDownloading case. When true, Operation/Completed/Total apply.
	HasLayers bool
	Operation string // "downloading", "extracting", "download-complete", "pull-complete"
	Completed int64
	Total     int64
}
