// Package fs provides the atomic-write primitive the node store and arrow
// files build on: write to a uuid-suffixed temp file in the destination
// directory, then os.Rename into place, so a crash mid-write never leaves
// a half-written nodes/<id> or deltas/<id>.delta visible under its final
// name (spec.md §4.6 step 5/6, §5 "shared resources").
package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteFileAtomic writes data to path by first writing it to a sibling
// temp file, then renaming it over path. perm is applied to the temp file
// before the rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// WriteFileExclusive writes data to path only if it does not already
// exist, used for write-once artifacts (node headers, delta files, origin
// files) named by content hash or by a user-chosen name that must not be
// silently overwritten. It still stages through a temp file so a partial
// write is never observable under the final name.
func WriteFileExclusive(path string, data []byte, perm os.FileMode) error {
	if _, err := os.Stat(path); err == nil {
		return nil // write-once: an existing file with the same content-addressed name is already correct
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return WriteFileAtomic(path, data, perm)
}
