package build

// Version and Date are set at link time via -ldflags, e.g.:
//
//	go build -ldflags "-X github.com/schmitthub/clawker/internal/build.Version=v1.2.3 \
//	  -X github.com/schmitthub/clawker/internal/build.Date=2026-07-31"
var (
	Version = "dev"
	Date    = "unknown"
	Commit  = "none"
)
