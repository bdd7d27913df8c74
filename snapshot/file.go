package snapshot

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andreyvit/kvs/kvval"
)

// FileBackend keeps snapshots as file pairs under <root>/<process>/,
// kvs_<instance>_<slot>.json next to kvs_<instance>_<slot>.hash.
type FileBackend struct {
	dir      string
	instance int
	logger   *slog.Logger
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend opens a backend rooted at <root>/<process>, creating the
// directory if needed. Pass a nil logger to use slog.Default().
func NewFileBackend(root, process string, instance int, logger *slog.Logger) (*FileBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Join(root, process)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir, instance: instance, logger: logger}, nil
}

// Dir returns the directory holding this backend's snapshot files.
func (b *FileBackend) Dir() string { return b.dir }

func (b *FileBackend) ContentPath(slot Slot) string {
	return filepath.Join(b.dir, ContentFileName(b.instance, slot))
}

func (b *FileBackend) ChecksumPath(slot Slot) string {
	return filepath.Join(b.dir, ChecksumFileName(b.instance, slot))
}

func (b *FileBackend) Load(slot Slot, required bool) (map[string]kvval.Value, error) {
	contentPath := b.ContentPath(slot)
	content, err := os.ReadFile(contentPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if required {
				return nil, fmt.Errorf("%s: %w", contentPath, ErrSnapshotMissing)
			}
			return nil, nil
		}
		return nil, err
	}

	checksumPath := b.ChecksumPath(slot)
	stored, err := os.ReadFile(checksumPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w: file missing", checksumPath, ErrMalformedChecksum)
		}
		return nil, err
	}
	if len(stored) != ChecksumSize {
		return nil, fmt.Errorf("%s: %w: %d bytes instead of %d", checksumPath, ErrMalformedChecksum, len(stored), ChecksumSize)
	}
	if sum := Checksum(content); !bytes.Equal(stored, sum[:]) {
		b.logger.LogAttrs(context.Background(), slog.LevelWarn, "kvs: snapshot corrupted",
			slog.String("file", contentPath), hexAttr("stored", stored), hexAttr("computed", sum[:]))
		return nil, fmt.Errorf("%s: %w: stored checksum %x, computed %x", contentPath, ErrCorruptedSnapshot, stored, sum)
	}

	data, err := kvval.DecodeMap(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", contentPath, err)
	}
	return data, nil
}

// Save writes both files as temporary siblings, syncs them and renames
// them into place, checksum before content. A crash between the renames
// leaves the new checksum next to the old content, which fails
// verification on the next load instead of silently reviving stale data.
func (b *FileBackend) Save(slot Slot, data map[string]kvval.Value) error {
	content, err := kvval.EncodeMap(data)
	if err != nil {
		return err
	}
	sum := Checksum(content)

	checksumPath := b.ChecksumPath(slot)
	contentPath := b.ContentPath(slot)

	tmpChecksum, err := writeTempFile(checksumPath, sum[:])
	if err != nil {
		return err
	}
	tmpContent, err := writeTempFile(contentPath, content)
	if err != nil {
		os.Remove(tmpChecksum)
		return err
	}

	if err := os.Rename(tmpChecksum, checksumPath); err != nil {
		os.Remove(tmpChecksum)
		os.Remove(tmpContent)
		return err
	}
	if err := os.Rename(tmpContent, contentPath); err != nil {
		os.Remove(tmpContent)
		return err
	}
	return nil
}

func (b *FileBackend) Exists(slot Slot) bool {
	_, err := os.Stat(b.ContentPath(slot))
	return err == nil
}

// Rotate moves each pair one slot older, oldest first, so that slot
// numbers keep ordering snapshots by age even if a crash interrupts the
// walk. A pair without a checksum file is skipped.
func (b *FileBackend) Rotate() error {
	for i := MaxSnapshots - 1; i >= 0; i-- {
		from, to := Slot(i), Slot(i+1)
		err := os.Rename(b.ChecksumPath(from), b.ChecksumPath(to))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return err
		}
		if err := os.Rename(b.ContentPath(from), b.ContentPath(to)); err != nil {
			return err
		}
	}
	return nil
}

func (b *FileBackend) Count() int {
	if !b.Exists(LiveSlot) {
		return 0
	}
	n := 0
	for i := 1; i <= MaxSnapshots; i++ {
		if !b.Exists(Slot(i)) {
			break
		}
		n = i
	}
	return n
}

func (b *FileBackend) Close() error {
	return nil
}

func writeTempFile(path string, data []byte) (string, error) {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return "", err
	}
	var ok bool
	defer closeAndDeleteUnlessOK(f, &ok)

	if _, err := f.Write(data); err != nil {
		return "", err
	}
	if err := fdatasync(f); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	ok = true
	return tmp, nil
}

func closeAndDeleteUnlessOK(f *os.File, ok *bool) {
	if *ok {
		return
	}
	f.Close()
	os.Remove(f.Name())
}

func hexAttr(key string, b []byte) slog.Attr {
	return slog.String(key, hex.EncodeToString(b))
}
