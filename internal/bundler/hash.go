package bundler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ContentHash computes a SHA-256 hash over the rendered Dockerfile bytes,
// include file contents, and embedded script contents, returning a
// 12-character hex prefix. This is the content-addressed identifier used to
// detect when an image rebuild is needed.
//
// Include paths are resolved against workDir when relative and hashed in
// sorted order so the hash is independent of declaration order. A missing or
// unreadable include file is an error: silently skipping it would produce a
// stable hash for a broken build context.
func ContentHash(dockerfile []byte, includes []string, workDir string, embeddedScripts []string) (string, error) {
	h := sha256.New()

	// Hash the rendered Dockerfile (captures all template-driven changes)
	h.Write(dockerfile)

	if len(includes) > 0 {
		sorted := make([]string, len(includes))
		copy(sorted, includes)
		sort.Strings(sorted)

		for _, include := range sorted {
			path := include
			if !filepath.IsAbs(path) {
				path = filepath.Join(workDir, path)
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("reading include file %q: %w", include, err)
			}

			// Separator + filename framing avoids collisions between files
			// with identical content but different names.
			h.Write([]byte("\x00" + include + "\x00"))
			h.Write(content)
		}
	}

	// Embedded scripts ship inside every build context, so changing one must
	// change the hash even though no project file changed.
	for _, script := range embeddedScripts {
		h.Write([]byte("\x00script\x00"))
		h.Write([]byte(script))
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:12], nil
}
