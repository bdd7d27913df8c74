package snapshot

import (
	"os"
	"syscall"
)

// fdatasync is faster than f.Sync() aka fsync thanks to not syncing file
// metadata (last modification/access time) that isn't necessary to ensure
// durability of the data.
func fdatasync(f *os.File) error {
	return syscall.Fdatasync(int(f.Fd()))
}
