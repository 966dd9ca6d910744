package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/schmitthub/clawker/pkg/whail"
	"github.com/schmitthub/clawker/pkg/whail/buildkit"
)

// buildImageWithTraceDecoder drives a build through the classic Docker
// Engine API ImageBuild call and decodes its response body with
// buildkit.Decoder, rendering a CLI-style transcript and delivering
// structured events, instead of going through whail.ImageBuildKit's gRPC
// Solve path. See BuildImageOpts.UseRawTraceDecoder.
func (c *Client) buildImageWithTraceDecoder(ctx context.Context, opts BuildImageOpts) error {
	options := whail.ImageBuildOptions{
		Tags:           opts.Tags,
		Dockerfile:     opts.Dockerfile,
		Remove:         true,
		NoCache:        opts.NoCache,
		BuildArgs:      opts.BuildArgs,
		Labels:         opts.Labels,
		Target:         opts.Target,
		PullParent:     opts.Pull,
		SuppressOutput: opts.SuppressOutput,
		NetworkMode:    opts.NetworkMode,
	}

	var buildCtx bytes.Buffer
	if err := createTarArchive(opts.ContextDir, &buildCtx, nil); err != nil {
		return fmt.Errorf("buildkit: preparing build context: %w", err)
	}

	resp, err := c.ImageBuild(ctx, &buildCtx, options)
	if err != nil {
		return fmt.Errorf("building image: %w", err)
	}
	defer resp.Body.Close()

	out := opts.TranscriptOut
	if out == nil {
		out = io.Discard
	}

	dec := buildkit.NewDecoder(out, opts.OnBuildEvent)
	if err := dec.Run(ctx, resp.Body); err != nil {
		return fmt.Errorf("buildkit: decoding build response: %w", err)
	}
	return nil
}
