package whail

import (
	"context"
	"fmt"

	"github.com/moby/moby/client"
)

// EngineOptions configures the behavior of the Engine.
type EngineOptions struct {
	// LabelPrefix is the prefix for all managed labels (e.g., "com.myapp").
	// Used to construct the managed label key: "{LabelPrefix}.{ManagedLabel}".
	LabelPrefix string

	// ManagedLabel is the label key suffix that marks resources as managed.
	// Default: "managed". Combined with LabelPrefix to form the full key.
	// Example: with LabelPrefix="com.myapp" and ManagedLabel="managed",
	// the full key is "com.myapp.managed=true".
	ManagedLabel string

	// Labels configures labels for different resource types.
	Labels LabelConfig
}

// DefaultManagedLabel is the default label suffix for marking managed resources.
const DefaultManagedLabel = "managed"

// Engine wraps the Docker client with automatic label-based resource isolation.
// All list operations automatically inject filters to only return resources
// managed by this engine (identified by the configured label prefix), and all
// destructive operations refuse to touch resources without the managed label.
type Engine struct {
	client.APIClient
	options EngineOptions

	// BuildKitImageBuilder performs the actual BuildKit Solve call behind
	// ImageBuildKit. Left nil by New/NewWithOptions; callers that need
	// BuildKit set it explicitly, typically via
	// pkg/whail/buildkit.NewImageBuilder(engine.APIClient), to keep this
	// package free of BuildKit's dependency tree.
	BuildKitImageBuilder func(context.Context, ImageBuildKitOptions) error

	// Precomputed values for efficiency
	managedLabelKey   string // e.g., "com.myapp.managed"
	managedLabelValue string // always "true"
}

// New creates a new Engine with default options.
// The caller is responsible for calling Close() when done.
func New(ctx context.Context) (*Engine, error) {
	return NewWithOptions(ctx, EngineOptions{})
}

// NewWithOptions creates a new Engine with the given options.
// It connects to the Docker daemon and verifies the connection.
func NewWithOptions(ctx context.Context, opts EngineOptions) (*Engine, error) {
	// Apply defaults
	if opts.ManagedLabel == "" {
		opts.ManagedLabel = DefaultManagedLabel
	}

	// Create the underlying Docker client
	realClient, err := client.New(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	e := &Engine{
		APIClient:         realClient,
		options:           opts,
		managedLabelKey:   opts.LabelPrefix + "." + opts.ManagedLabel,
		managedLabelValue: "true",
	}

	// Verify connectivity
	if err := e.HealthCheck(ctx); err != nil {
		return nil, err
	}

	return e, nil
}

// NewFromExisting wraps an existing APIClient (useful for testing with mocks).
func NewFromExisting(c client.APIClient, opts EngineOptions) *Engine {
	if opts.ManagedLabel == "" {
		opts.ManagedLabel = DefaultManagedLabel
	}
	return &Engine{
		APIClient:         c,
		options:           opts,
		managedLabelKey:   opts.LabelPrefix + "." + opts.ManagedLabel,
		managedLabelValue: "true",
	}
}

// HealthCheck verifies the Docker daemon is reachable.
func (e *Engine) HealthCheck(ctx context.Context) error {
	_, err := e.Ping(ctx, client.PingOptions{})
	if err != nil {
		return ErrDockerNotRunning(err)
	}
	return nil
}

// Close closes the underlying Docker connection.
func (e *Engine) Close() error {
	return e.APIClient.Close()
}

// Options returns the engine options.
func (e *Engine) Options() EngineOptions {
	return e.options
}

// ManagedLabelKey returns the full managed label key (e.g., "com.myapp.managed").
func (e *Engine) ManagedLabelKey() string {
	return e.managedLabelKey
}

// ManagedLabelValue returns the managed label value (always "true").
func (e *Engine) ManagedLabelValue() string {
	return e.managedLabelValue
}

// newManagedFilter returns a fresh filter set containing only the managed
// label entry.
func (e *Engine) newManagedFilter() client.Filters {
	return client.Filters{}.Add("label", e.managedLabelKey+"="+e.managedLabelValue)
}

// injectManagedFilter adds the managed label filter to existing filters.
// Returns a new Filters value - does not mutate the input.
func (e *Engine) injectManagedFilter(existing client.Filters) client.Filters {
	result := client.Filters{}
	for key, values := range existing {
		for value, ok := range values {
			if ok {
				result = result.Add(key, value)
			}
		}
	}
	return result.Add("label", e.managedLabelKey+"="+e.managedLabelValue)
}

// containerLabels returns the labels applied to new containers: configured
// container labels, any extras, and the managed label (never overridable).
func (e *Engine) containerLabels(extra ...map[string]string) map[string]string {
	labels := e.options.Labels.ContainerLabels(extra...)
	labels[e.managedLabelKey] = e.managedLabelValue
	return labels
}

// volumeLabels returns the labels applied to new volumes.
func (e *Engine) volumeLabels(extra ...map[string]string) map[string]string {
	labels := e.options.Labels.VolumeLabels(extra...)
	labels[e.managedLabelKey] = e.managedLabelValue
	return labels
}

// networkLabels returns the labels applied to new networks.
func (e *Engine) networkLabels(extra ...map[string]string) map[string]string {
	labels := e.options.Labels.NetworkLabels(extra...)
	labels[e.managedLabelKey] = e.managedLabelValue
	return labels
}

// imageLabels returns the labels applied to built images.
func (e *Engine) imageLabels(extra ...map[string]string) map[string]string {
	labels := e.options.Labels.ImageLabels(extra...)
	labels[e.managedLabelKey] = e.managedLabelValue
	return labels
}
