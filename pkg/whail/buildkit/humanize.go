package buildkit

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
)

// humaniseBytes formats a byte count using Docker CLI's decimal SI
// convention (B, kB, MB, GB, TB). go-units.HumanSize already
// implements this exact convention and is used elsewhere in the Docker
// ecosystem for the same purpose (e.g. `docker image ls` size column), so
// it replaces a hand-rolled formatter.
func humaniseBytes(n int64) string {
	return units.HumanSize(float64(n))
}

// formatElapsed renders the duration since a vertex's observed start as
// "S.mmm" (seconds, dot, milliseconds zero-padded to 3 digits).
// Negative deltas (clock skew) are clamped to zero.
func formatElapsed(started, at time.Time) string {
	d := at.Sub(started)
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	millis := int64(d%time.Second) / int64(time.Millisecond)
	return fmt.Sprintf("%d.%03d", seconds, millis)
}
