package execution

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

// Snapshot fingerprints files (relative to root). Missing files map to "".
func Snapshot(root string, files []string) map[string]string {
	sums := make(map[string]string, len(files))
	for _, file := range files {
		sums[file] = fileHash(filepath.Join(root, file))
	}
	return sums
}

// ModifiedFiles lists the files whose fingerprint differs between two
// snapshots of the same file list, in the order given.
func ModifiedFiles(files []string, before, after map[string]string) []string {
	var modified []string
	for _, file := range files {
		if before[file] != after[file] {
			modified = append(modified, file)
		}
	}
	return modified
}

func fileHash(path string) string {
	f, err := os.Open(path) // #nosec G304 -- path comes from the git index
	if err != nil {
		return ""
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}
