package docker

import (
	"github.com/schmitthub/clawker/pkg/whail/buildkit"
)

// WireBuildKit installs the BuildKit Solve builder on the client's engine.
// Without this, ImageBuildKit routing returns an error instead of building.
// Safe to call multiple times; the first wiring wins.
func WireBuildKit(c *Client) {
	if c.BuildKitImageBuilder != nil {
		return
	}
	dialer, _ := c.APIClient.(buildkit.DockerDialer)
	c.BuildKitImageBuilder = buildkit.NewImageBuilder(dialer)
}
