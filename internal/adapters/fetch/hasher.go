package fetch

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// FileDigest computes the xxhash64 digest of a file's content,
// formatted as 16 hex digits.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
