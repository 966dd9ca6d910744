package docker

import (
	"context"

	"github.com/schmitthub/clawker/pkg/whail"
)

// Pinger is the subset of the Docker API needed for BuildKit detection.
type Pinger = whail.Pinger

// BuildKitEnabled reports whether the daemon prefers the BuildKit builder.
// Detection follows Docker CLI's rules: DOCKER_BUILDKIT env var first, then
// the daemon's reported builder version, then an OS heuristic.
func BuildKitEnabled(ctx context.Context, p Pinger) (bool, error) {
	return whail.BuildKitEnabled(ctx, p)
}
