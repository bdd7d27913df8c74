//go:build !linux

package snapshot

import "os"

func fdatasync(f *os.File) error {
	return f.Sync()
}
