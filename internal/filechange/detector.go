// Package filechange implements the deterministic file-change detector:
// given a conversation's recorded file metrics, find which tracked paths
// have changed on disk since the last notification.
package filechange

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/relaykit/agentcore/internal/convo"
)

// Reader abstracts the filesystem read used to compute a path's current
// content hash. The core never touches the filesystem directly — on-disk
// storage is treated as an external concern.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

// Change is a single detected modification: path and its current content
// hash (nil if the file is no longer readable).
type Change struct {
	Path        string
	ContentHash *string
}

// Detect compares each path in metrics.FileOperations against its current
// on-disk content and returns the paths whose hash differs from the last
// recorded one, sorted by path for determinism.
//
// The caller is responsible for updating Metrics.FileOperations[path]
// .ContentHash to the returned value after notifying on a Change; Detect
// itself never mutates metrics, so repeated calls without that update will
// keep reporting the same change.
func Detect(reader Reader, metrics convo.Metrics) []Change {
	if len(metrics.FileOperations) == 0 {
		return nil
	}

	var changes []Change
	for path, op := range metrics.FileOperations {
		current := currentHash(reader, path)
		if !hashEqual(current, op.ContentHash) {
			changes = append(changes, Change{Path: path, ContentHash: current})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

func currentHash(reader Reader, path string) *string {
	content, err := reader.ReadFile(path)
	if err != nil {
		return nil
	}
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	return &hash
}

func hashEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Hash computes the content hash filechange uses internally, exposed so
// tool executors can record the same digest at write time.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
