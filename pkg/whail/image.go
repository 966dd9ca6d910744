package whail

import (
	"context"
	"io"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/moby/moby/api/types/image"
	"github.com/moby/moby/client"
)

// ImageBuild builds an image from a build context.
// The managed label is merged into the build options so the resulting image
// is visible to this engine's list and remove operations.
func (e *Engine) ImageBuild(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
	options.Labels = MergeLabels(e.imageLabels(), options.Labels)
	options.Labels[e.managedLabelKey] = e.managedLabelValue

	resp, err := e.APIClient.ImageBuild(ctx, buildContext, options)
	if err != nil {
		return client.ImageBuildResult{}, ErrImageBuildFailed(err)
	}
	return resp, nil
}

// ImageList lists images matching the given options.
// The managed label filter is automatically injected.
func (e *Engine) ImageList(ctx context.Context, options client.ImageListOptions) (client.ImageListResult, error) {
	options.Filters = e.injectManagedFilter(options.Filters)
	result, err := e.APIClient.ImageList(ctx, options)
	if err != nil {
		return client.ImageListResult{}, ErrNetworkError(err)
	}
	return result, nil
}

// ImageListByLabels lists images matching additional label filters.
func (e *Engine) ImageListByLabels(ctx context.Context, labels map[string]string) ([]image.Summary, error) {
	f := e.newManagedFilter()
	for k, v := range labels {
		f = f.Add("label", k+"="+v)
	}
	result, err := e.APIClient.ImageList(ctx, client.ImageListOptions{Filters: f})
	if err != nil {
		return nil, ErrNetworkError(err)
	}
	return result.Items, nil
}

// ImageRemove removes a managed image.
func (e *Engine) ImageRemove(ctx context.Context, ref string, options client.ImageRemoveOptions) (client.ImageRemoveResult, error) {
	isManaged, err := e.IsImageManaged(ctx, ref)
	if err != nil || !isManaged {
		return client.ImageRemoveResult{}, ErrImageNotFound(ref, err)
	}
	result, err := e.APIClient.ImageRemove(ctx, ref, options)
	if err != nil {
		return client.ImageRemoveResult{}, ErrImageNotFound(ref, err)
	}
	return result, nil
}

// ImageInspect inspects a managed image.
func (e *Engine) ImageInspect(ctx context.Context, ref string) (client.ImageInspectResult, error) {
	isManaged, err := e.IsImageManaged(ctx, ref)
	if err != nil || !isManaged {
		return client.ImageInspectResult{}, ErrImageNotFound(ref, err)
	}
	result, err := e.APIClient.ImageInspect(ctx, ref)
	if err != nil {
		return client.ImageInspectResult{}, ErrImageNotFound(ref, err)
	}
	return result, nil
}

// ImageTag adds a tag to a managed image.
func (e *Engine) ImageTag(ctx context.Context, options client.ImageTagOptions) (client.ImageTagResult, error) {
	isManaged, err := e.IsImageManaged(ctx, options.Source)
	if err != nil || !isManaged {
		return client.ImageTagResult{}, ErrImageNotFound(options.Source, err)
	}
	result, err := e.APIClient.ImageTag(ctx, options)
	if err != nil {
		return client.ImageTagResult{}, ErrImageNotFound(options.Source, err)
	}
	return result, nil
}

// ImagesPrune removes unused managed images. When dangling is true, only
// untagged images are pruned.
func (e *Engine) ImagesPrune(ctx context.Context, dangling bool) (client.ImagePruneResult, error) {
	f := e.newManagedFilter()
	if dangling {
		f = f.Add("dangling", "true")
	}
	result, err := e.APIClient.ImagePrune(ctx, client.ImagePruneOptions{Filters: f})
	if err != nil {
		return client.ImagePruneResult{}, ErrNetworkError(err)
	}
	return result, nil
}

// IsImageManaged checks if an image has the managed label.
// An image that does not exist is reported as not managed, without error.
func (e *Engine) IsImageManaged(ctx context.Context, ref string) (bool, error) {
	result, err := e.APIClient.ImageInspect(ctx, ref)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if result.Config == nil {
		return false, nil
	}
	val, ok := result.Config.Labels[e.managedLabelKey]
	return ok && val == e.managedLabelValue, nil
}
