// Command clawker wraps Claude Code in Docker containers.
package main

import (
	"os"

	"github.com/schmitthub/clawker/internal/clawker"
)

func main() {
	os.Exit(clawker.Main())
}
