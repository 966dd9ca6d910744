package whail

import (
	"context"

	"github.com/moby/moby/client"
)

// CopyToContainer copies a tar archive into a managed container.
func (e *Engine) CopyToContainer(ctx context.Context, containerID string, options client.CopyToContainerOptions) (client.CopyToContainerResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.CopyToContainerResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.CopyToContainer(ctx, containerID, options)
	if err != nil {
		return client.CopyToContainerResult{}, ErrCopyToContainerFailed(containerID, err)
	}
	return result, nil
}

// CopyFromContainer copies a path out of a managed container as a tar archive.
func (e *Engine) CopyFromContainer(ctx context.Context, containerID string, options client.CopyFromContainerOptions) (client.CopyFromContainerResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.CopyFromContainerResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.CopyFromContainer(ctx, containerID, options)
	if err != nil {
		return client.CopyFromContainerResult{}, ErrCopyFromContainerFailed(containerID, err)
	}
	return result, nil
}

// ContainerStatPath stats a path inside a managed container.
func (e *Engine) ContainerStatPath(ctx context.Context, containerID string, options client.ContainerStatPathOptions) (client.ContainerStatPathResult, error) {
	isManaged, err := e.IsContainerManaged(ctx, containerID)
	if err != nil || !isManaged {
		return client.ContainerStatPathResult{}, ErrContainerNotFound(containerID)
	}
	result, err := e.APIClient.ContainerStatPath(ctx, containerID, options)
	if err != nil {
		return client.ContainerStatPathResult{}, ErrContainerStatPathFailed(containerID, err)
	}
	return result, nil
}
