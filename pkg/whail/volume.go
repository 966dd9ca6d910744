package whail

import (
	"context"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/moby/moby/client"
)

// VolumeCreate creates a new volume with managed labels automatically applied.
// The provided labels are merged with the engine's configured labels.
func (e *Engine) VolumeCreate(ctx context.Context, options client.VolumeCreateOptions, extraLabels ...map[string]string) (client.VolumeCreateResult, error) {
	labels := e.volumeLabels(extraLabels...)
	if options.Labels == nil {
		options.Labels = labels
	} else {
		options.Labels = MergeLabels(options.Labels, labels)
	}
	// Ensure managed label cannot be overridden by extra labels.
	options.Labels[e.managedLabelKey] = e.managedLabelValue

	vol, err := e.APIClient.VolumeCreate(ctx, options)
	if err != nil {
		return client.VolumeCreateResult{}, ErrVolumeCreateFailed(options.Name, err)
	}
	return vol, nil
}

// VolumeRemove removes a managed volume.
func (e *Engine) VolumeRemove(ctx context.Context, name string, force bool) (client.VolumeRemoveResult, error) {
	isManaged, err := e.IsVolumeManaged(ctx, name)
	if err != nil || !isManaged {
		return client.VolumeRemoveResult{}, ErrVolumeNotFound(name, err)
	}
	result, err := e.APIClient.VolumeRemove(ctx, name, client.VolumeRemoveOptions{Force: force})
	if err != nil {
		return client.VolumeRemoveResult{}, ErrVolumeRemoveFailed(name, err)
	}
	return result, nil
}

// VolumeInspect inspects a managed volume.
func (e *Engine) VolumeInspect(ctx context.Context, name string) (client.VolumeInspectResult, error) {
	isManaged, err := e.IsVolumeManaged(ctx, name)
	if err != nil || !isManaged {
		return client.VolumeInspectResult{}, ErrVolumeNotFound(name, err)
	}
	result, err := e.APIClient.VolumeInspect(ctx, name, client.VolumeInspectOptions{})
	if err != nil {
		return client.VolumeInspectResult{}, ErrVolumeInspectFailed(name, err)
	}
	return result, nil
}

// VolumeExists checks if a volume exists, managed or not.
func (e *Engine) VolumeExists(ctx context.Context, name string) (bool, error) {
	_, err := e.APIClient.VolumeInspect(ctx, name, client.VolumeInspectOptions{})
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// VolumeList lists managed volumes, optionally narrowed by extra label filters.
func (e *Engine) VolumeList(ctx context.Context, extraFilters ...map[string]string) (client.VolumeListResult, error) {
	f := e.newManagedFilter()
	for _, labels := range extraFilters {
		for k, v := range labels {
			f = f.Add("label", k+"="+v)
		}
	}
	result, err := e.APIClient.VolumeList(ctx, client.VolumeListOptions{Filters: f})
	if err != nil {
		return client.VolumeListResult{}, ErrNetworkError(err)
	}
	return result, nil
}

// VolumeListAll lists all managed volumes.
func (e *Engine) VolumeListAll(ctx context.Context) (client.VolumeListResult, error) {
	return e.VolumeList(ctx)
}

// VolumeListByLabels lists managed volumes matching the given label filters.
func (e *Engine) VolumeListByLabels(ctx context.Context, labels map[string]string) (client.VolumeListResult, error) {
	return e.VolumeList(ctx, labels)
}

// VolumesPrune removes all unused managed volumes. When all is true, named
// volumes are pruned too, not just anonymous ones.
func (e *Engine) VolumesPrune(ctx context.Context, all bool) (client.VolumePruneResult, error) {
	f := e.newManagedFilter()
	if all {
		f = f.Add("all", "true")
	}
	result, err := e.APIClient.VolumePrune(ctx, client.VolumePruneOptions{Filters: f})
	if err != nil {
		return client.VolumePruneResult{}, ErrNetworkError(err)
	}
	return result, nil
}

// IsVolumeManaged checks if a volume has the managed label.
// A volume that does not exist is reported as not managed, without error.
func (e *Engine) IsVolumeManaged(ctx context.Context, name string) (bool, error) {
	result, err := e.APIClient.VolumeInspect(ctx, name, client.VolumeInspectOptions{})
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	val, ok := result.Volume.Labels[e.managedLabelKey]
	return ok && val == e.managedLabelValue, nil
}
