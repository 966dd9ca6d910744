package whail

import (
	"context"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/network"
	"github.com/moby/moby/client"
)

// Labels is a list of label maps merged in order when creating resources.
type Labels []map[string]string

// WaitCondition re-exports the Docker SDK wait condition type.
type WaitCondition = container.WaitCondition

// Wait condition constants.
const (
	WaitConditionNotRunning = container.WaitConditionNotRunning
	WaitConditionNextExit   = container.WaitConditionNextExit
	WaitConditionRemoved    = container.WaitConditionRemoved
)

// Container configuration re-exports used by higher-level packages.
type (
	Resources             = container.Resources
	RestartPolicy         = container.RestartPolicy
	UpdateConfig          = container.UpdateConfig
	ContainerUpdateResult = client.ContainerUpdateResult
)

// ContainerCreateOptions configures ContainerCreate.
type ContainerCreateOptions struct {
	// Config is the container configuration (image, cmd, env, labels, ...).
	Config *container.Config

	// HostConfig is the host-level configuration (mounts, resources, ...).
	HostConfig *container.HostConfig

	// NetworkingConfig holds endpoint configuration. Never mutated; when
	// EnsureNetwork adds an endpoint, a copy is made first.
	NetworkingConfig *network.NetworkingConfig

	// Name is the container name.
	Name string

	// ExtraLabels are merged with the engine's configured labels.
	ExtraLabels Labels

	// EnsureNetwork, when set, creates the named network if missing and
	// connects the new container to it.
	EnsureNetwork *EnsureNetworkOptions
}

// ContainerStartOptions configures ContainerStart.
type ContainerStartOptions struct {
	// ContainerID is the container to start.
	ContainerID string

	// EnsureNetwork, when set, creates the named network if missing and
	// connects the container to it before starting.
	EnsureNetwork *EnsureNetworkOptions
}

// ContainerCreate creates a new container with managed labels automatically applied.
// The provided extra labels are merged with the engine's configured labels; the
// managed label itself can never be overridden.
func (e *Engine) ContainerCreate(ctx context.Context, opts ContainerCreateOptions) (client.ContainerCreateResult, error) {
	config := opts.Config
	if config == nil {
		config = &container.Config{}
	}
	config.Labels = MergeLabels(e.containerLabels(opts.ExtraLabels...), config.Labels)
	config.Labels[e.managedLabelKey] = e.managedLabelValue

	networkingConfig := opts.NetworkingConfig

	if opts.EnsureNetwork != nil {
		if _, err := e.EnsureNetwork(ctx, *opts.EnsureNetwork); err != nil {
			return client.ContainerCreateResult{}, ErrContainerCreateFailed(err)
		}

		// Copy the caller's networking config before adding the endpoint.
		copied := &network.NetworkingConfig{
			EndpointsConfig: make(map[string]*network.EndpointSettings),
		}
		if networkingConfig != nil {
			for name, endpoint := range networkingConfig.EndpointsConfig {
				copied.EndpointsConfig[name] = endpoint
			}
		}
		if _, ok := copied.EndpointsConfig[opts.EnsureNetwork.Name]; !ok {
			copied.EndpointsConfig[opts.EnsureNetwork.Name] = &network.EndpointSettings{}
		}
		networkingConfig = copied
	}

	resp, err := e.APIClient.ContainerCreate(ctx, client.ContainerCreateOptions{
		Name:             opts.Name,
		Config:           config,
		HostConfig:       opts.HostConfig,
		NetworkingConfig: networkingConfig,
	})
	if err != nil {
		return client.ContainerCreateResult{}, ErrContainerCreateFailed(err)
	}
	return resp, nil
}

// ContainerStart starts a managed container, optionally ensuring a network
// exists and is connected first.
func (e *Engine) ContainerStart(ctx context.Context, opts ContainerStartOptions) (client.ContainerStartResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, opts.ContainerID)
	if err != nil || !isManaged {
		return client.ContainerStartResult{}, ErrContainerNotFound(opts.ContainerID)
	}

	if opts.EnsureNetwork != nil {
		if _, err := e.EnsureNetwork(ctx, *opts.EnsureNetwork); err != nil {
			return client.ContainerStartResult{}, ErrContainerStartFailed(opts.ContainerID, err)
		}
		if err := e.ensureContainerConnected(ctx, opts.ContainerID, opts.EnsureNetwork.Name); err != nil {
			return client.ContainerStartResult{}, ErrContainerStartFailed(opts.ContainerID, err)
		}
	}

	result, err := e.APIClient.ContainerStart(ctx, opts.ContainerID, client.ContainerStartOptions{})
	if err != nil {
		return client.ContainerStartResult{}, ErrContainerStartFailed(opts.ContainerID, err)
	}
	return result, nil
}

// ensureContainerConnected connects the container to the named network if it
// is not already connected. Already-connected containers are left untouched.
func (e *Engine) ensureContainerConnected(ctx context.Context, containerID, networkName string) error {
	info, err := e.APIClient.ContainerInspect(ctx, containerID, client.ContainerInspectOptions{})
	if err != nil {
		return err
	}
	if info.Container.NetworkSettings != nil {
		if _, connected := info.Container.NetworkSettings.Networks[networkName]; connected {
			return nil
		}
	}
	_, err = e.APIClient.NetworkConnect(ctx, networkName, client.NetworkConnectOptions{
		Container: containerID,
	})
	return err
}

// ContainerStop stops a managed container. A nil timeout uses the daemon default.
func (e *Engine) ContainerStop(ctx context.Context, containerID string, timeout *int) (client.ContainerStopResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerStopResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerStop(ctx, containerID, client.ContainerStopOptions{Timeout: timeout})
	if err != nil {
		return client.ContainerStopResult{}, ErrContainerStopFailed(containerID, err)
	}
	return result, nil
}

// ContainerRestart restarts a managed container. A nil timeout uses the daemon default.
func (e *Engine) ContainerRestart(ctx context.Context, containerID string, timeout *int) (client.ContainerRestartResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerRestartResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerRestart(ctx, containerID, client.ContainerRestartOptions{Timeout: timeout})
	if err != nil {
		return client.ContainerRestartResult{}, ErrContainerStopFailed(containerID, err)
	}
	return result, nil
}

// ContainerRemove removes a managed container.
func (e *Engine) ContainerRemove(ctx context.Context, containerID string, force bool) (client.ContainerRemoveResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerRemoveResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerRemove(ctx, containerID, client.ContainerRemoveOptions{Force: force})
	if err != nil {
		return client.ContainerRemoveResult{}, ErrContainerRemoveFailed(containerID, err)
	}
	return result, nil
}

// ContainerKill sends a signal to a managed container. An empty signal uses
// the daemon default.
func (e *Engine) ContainerKill(ctx context.Context, containerID, signal string) (client.ContainerKillResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerKillResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerKill(ctx, containerID, client.ContainerKillOptions{Signal: signal})
	if err != nil {
		return client.ContainerKillResult{}, ErrContainerStopFailed(containerID, err)
	}
	return result, nil
}

// ContainerPause pauses a managed container.
func (e *Engine) ContainerPause(ctx context.Context, containerID string) (client.ContainerPauseResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerPauseResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerPause(ctx, containerID, client.ContainerPauseOptions{})
	if err != nil {
		return client.ContainerPauseResult{}, ErrContainerStopFailed(containerID, err)
	}
	return result, nil
}

// ContainerUnpause unpauses a managed container.
func (e *Engine) ContainerUnpause(ctx context.Context, containerID string) (client.ContainerUnpauseResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerUnpauseResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerUnpause(ctx, containerID, client.ContainerUnpauseOptions{})
	if err != nil {
		return client.ContainerUnpauseResult{}, ErrContainerStopFailed(containerID, err)
	}
	return result, nil
}

// ContainerRename renames a managed container.
func (e *Engine) ContainerRename(ctx context.Context, containerID, newName string) (client.ContainerRenameResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerRenameResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerRename(ctx, containerID, client.ContainerRenameOptions{NewName: newName})
	if err != nil {
		return client.ContainerRenameResult{}, ErrContainerInspectFailed(containerID, err)
	}
	return result, nil
}

// ContainerResize resizes a managed container's TTY.
func (e *Engine) ContainerResize(ctx context.Context, containerID string, height, width uint) (client.ContainerResizeResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerResizeResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerResize(ctx, containerID, client.ContainerResizeOptions{
		Height: height,
		Width:  width,
	})
	if err != nil {
		return client.ContainerResizeResult{}, ErrContainerInspectFailed(containerID, err)
	}
	return result, nil
}

// ContainerAttach attaches to a managed container.
func (e *Engine) ContainerAttach(ctx context.Context, containerID string, options client.ContainerAttachOptions) (client.ContainerAttachResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerAttachResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerAttach(ctx, containerID, options)
	if err != nil {
		return client.ContainerAttachResult{}, ErrAttachFailed(err)
	}
	return result, nil
}

// ContainerWait waits for a managed container to reach the given condition.
// For unmanaged containers, the returned result has a nil Result channel and
// a buffered Error channel carrying the refusal.
func (e *Engine) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) client.ContainerWaitResult {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		errCh := make(chan error, 1)
		errCh <- ErrContainerNotFound(containerID)
		return client.ContainerWaitResult{Error: errCh}
	}
	return e.APIClient.ContainerWait(ctx, containerID, client.ContainerWaitOptions{Condition: condition})
}

// ContainerLogs returns the logs of a managed container.
func (e *Engine) ContainerLogs(ctx context.Context, containerID string, options client.ContainerLogsOptions) (client.ContainerLogsResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return nil, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerLogs(ctx, containerID, options)
	if err != nil {
		return nil, ErrContainerLogsFailed(containerID, err)
	}
	return result, nil
}

// ContainerTop lists processes inside a managed container.
func (e *Engine) ContainerTop(ctx context.Context, containerID string, args []string) (client.ContainerTopResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerTopResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerTop(ctx, containerID, client.ContainerTopOptions{Arguments: args})
	if err != nil {
		return client.ContainerTopResult{}, ErrContainerInspectFailed(containerID, err)
	}
	return result, nil
}

// ContainerStats returns resource usage statistics of a managed container.
func (e *Engine) ContainerStats(ctx context.Context, containerID string, stream bool) (client.ContainerStatsResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerStatsResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerStats(ctx, containerID, client.ContainerStatsOptions{Stream: stream})
	if err != nil {
		return client.ContainerStatsResult{}, ErrContainerInspectFailed(containerID, err)
	}
	return result, nil
}

// ContainerStatsOneShot returns a single stats sample of a managed container.
func (e *Engine) ContainerStatsOneShot(ctx context.Context, containerID string) (client.ContainerStatsResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerStatsResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerStats(ctx, containerID, client.ContainerStatsOptions{OneShot: true})
	if err != nil {
		return client.ContainerStatsResult{}, ErrContainerInspectFailed(containerID, err)
	}
	return result, nil
}

// ContainerUpdate updates resource limits or restart policy of a managed container.
// Nil arguments leave the corresponding setting unchanged.
func (e *Engine) ContainerUpdate(ctx context.Context, containerID string, resources *Resources, restartPolicy *RestartPolicy) (client.ContainerUpdateResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerUpdateResult{}, ErrContainerNotFound(containerID)
	}

	updateConfig := container.UpdateConfig{}
	if resources != nil {
		updateConfig.Resources = *resources
	}
	if restartPolicy != nil {
		updateConfig.RestartPolicy = *restartPolicy
	}

	result, err := e.APIClient.ContainerUpdate(ctx, containerID, client.ContainerUpdateOptions{
		UpdateConfig: updateConfig,
	})
	if err != nil {
		return client.ContainerUpdateResult{}, ErrContainerInspectFailed(containerID, err)
	}
	return result, nil
}

// ContainerInspect inspects a managed container.
func (e *Engine) ContainerInspect(ctx context.Context, containerID string, options client.ContainerInspectOptions) (client.ContainerInspectResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerInspectResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerInspect(ctx, containerID, options)
	if err != nil {
		return client.ContainerInspectResult{}, ErrContainerInspectFailed(containerID, err)
	}
	return result, nil
}

// ContainerList lists containers matching the given options.
// The managed label filter is automatically injected.
func (e *Engine) ContainerList(ctx context.Context, options client.ContainerListOptions) (client.ContainerListResult, error) {
	options.Filters = e.injectManagedFilter(options.Filters)
	result, err := e.APIClient.ContainerList(ctx, options)
	if err != nil {
		return client.ContainerListResult{}, ErrNetworkError(err)
	}
	return result, nil
}

// ContainerListAll lists all managed containers, including stopped ones.
func (e *Engine) ContainerListAll(ctx context.Context) ([]container.Summary, error) {
	result, err := e.ContainerList(ctx, client.ContainerListOptions{All: true})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ContainerListRunning lists running managed containers.
func (e *Engine) ContainerListRunning(ctx context.Context) ([]container.Summary, error) {
	result, err := e.ContainerList(ctx, client.ContainerListOptions{})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ContainerListByLabels lists containers matching additional label filters.
func (e *Engine) ContainerListByLabels(ctx context.Context, labels map[string]string, all bool) ([]container.Summary, error) {
	f := e.newManagedFilter()
	for k, v := range labels {
		f = f.Add("label", k+"="+v)
	}
	result, err := e.APIClient.ContainerList(ctx, client.ContainerListOptions{
		All:     all,
		Filters: f,
	})
	if err != nil {
		return nil, ErrNetworkError(err)
	}
	return result.Items, nil
}

// FindContainerByName finds a managed container by exact name.
// Returns ErrContainerNotFound when no managed container matches.
func (e *Engine) FindContainerByName(ctx context.Context, name string) (*container.Summary, error) {
	f := e.injectManagedFilter(client.Filters{}.Add("name", name))
	result, err := e.APIClient.ContainerList(ctx, client.ContainerListOptions{
		All:     true,
		Filters: f,
	})
	if err != nil {
		return nil, ErrNetworkError(err)
	}

	// Docker's name filter is a substring match; require an exact hit.
	for i := range result.Items {
		for _, n := range result.Items[i].Names {
			if n == "/"+name || n == name {
				return &result.Items[i], nil
			}
		}
	}
	return nil, ErrContainerNotFound(name)
}

// FindManagedContainerByName is an alias for FindContainerByName kept for
// callers that want the managed qualification spelled out.
func (e *Engine) FindManagedContainerByName(ctx context.Context, name string) (*container.Summary, error) {
	return e.FindContainerByName(ctx, name)
}

// IsContainerManaged checks if a container has the managed label.
// A container that does not exist is reported as not managed, without error.
func (e *Engine) IsContainerManaged(ctx context.Context, containerID string) (bool, error) {
	info, err := e.APIClient.ContainerInspect(ctx, containerID, client.ContainerInspectOptions{})
	if err != nil {
		return false, nil
	}
	if info.Container.Config == nil {
		return false, nil
	}
	val, ok := info.Container.Config.Labels[e.managedLabelKey]
	return ok && val == e.managedLabelValue, nil
}

// ExecCreate creates an exec instance in a managed container.
func (e *Engine) ExecCreate(ctx context.Context, containerID string, options client.ExecCreateOptions) (client.ExecCreateResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ExecCreateResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ExecCreate(ctx, containerID, options)
	if err != nil {
		return client.ExecCreateResult{}, ErrAttachFailed(err)
	}
	return result, nil
}

// ExecAttach attaches to an exec instance. The instance was necessarily
// created through ExecCreate, which already enforced the managed check.
func (e *Engine) ExecAttach(ctx context.Context, execID string, options client.ExecAttachOptions) (client.ExecAttachResult, error) {
	result, err := e.APIClient.ExecAttach(ctx, execID, options)
	if err != nil {
		return client.ExecAttachResult{}, ErrAttachFailed(err)
	}
	return result, nil
}

// ExecStart starts an exec instance without attaching.
func (e *Engine) ExecStart(ctx context.Context, execID string, options client.ExecStartOptions) (client.ExecStartResult, error) {
	result, err := e.APIClient.ExecStart(ctx, execID, options)
	if err != nil {
		return client.ExecStartResult{}, ErrAttachFailed(err)
	}
	return result, nil
}

// ExecResize resizes an exec instance's TTY.
func (e *Engine) ExecResize(ctx context.Context, execID string, options client.ExecResizeOptions) (client.ExecResizeResult, error) {
	result, err := e.APIClient.ExecResize(ctx, execID, options)
	if err != nil {
		return client.ExecResizeResult{}, ErrAttachFailed(err)
	}
	return result, nil
}

// ExecInspect inspects an exec instance.
func (e *Engine) ExecInspect(ctx context.Context, execID string, options client.ExecInspectOptions) (client.ExecInspectResult, error) {
	result, err := e.APIClient.ExecInspect(ctx, execID, options)
	if err != nil {
		return client.ExecInspectResult{}, ErrAttachFailed(err)
	}
	return result, nil
}
