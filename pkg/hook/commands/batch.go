package commands

import (
	"errors"
	"fmt"
	"strings"
)

// MaxCommandLength caps the length of a single command line. It stays well
// below ARG_MAX on every supported platform.
const MaxCommandLength = 1 << 17

// minBatchSize keeps concurrent runs from splitting into tiny batches.
const minBatchSize = 4

// ErrArgumentTooLong is returned when a single filename cannot fit on a
// command line even alone.
var ErrArgumentTooLong = errors.New("argument too long")

// Partition splits files into batches so that argv plus a batch stays
// within maxLength bytes (joined with spaces). With jobs > 1 the files are
// spread over at least jobs batches when there are enough of them. Without
// files a single empty batch is returned so the command still runs once.
func Partition(argv, files []string, jobs, maxLength int) ([][]string, error) {
	if maxLength <= 0 {
		maxLength = MaxCommandLength
	}
	if jobs < 1 {
		jobs = 1
	}

	maxArgs := max(minBatchSize, (len(files)+jobs-1)/jobs)
	baseLength := commandLength(argv) + 1

	var batches [][]string
	var batch []string
	length := baseLength

	for i := 0; i < len(files); {
		file := files[i]
		fileLength := len(file) + 1

		switch {
		case length+fileLength <= maxLength && len(batch) < maxArgs:
			batch = append(batch, file)
			length += fileLength
			i++
		case len(batch) == 0:
			return nil, fmt.Errorf("%w: %s", ErrArgumentTooLong, file)
		default:
			batches = append(batches, batch)
			batch = nil
			length = baseLength
		}
	}

	return append(batches, batch), nil
}

func commandLength(argv []string) int {
	return len(strings.Join(argv, " "))
}
