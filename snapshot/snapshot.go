// Package snapshot persists key-value data as verified snapshots.
//
// A snapshot is a pair of sibling artifacts: the content, a single JSON
// object holding all keys, and a checksum over the exact content bytes.
// Snapshots occupy slots: the live slot holds the current data, slots 1
// through MaxSnapshots hold progressively older rotated copies, and the
// default slot holds read-only defaults that are written by deployment
// tooling rather than by the store itself.
//
// Verification is not optional. A backend never returns unverified data:
// a checksum mismatch fails the load even when the caller would have
// accepted an absent snapshot.
package snapshot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/andreyvit/kvs/kvval"
)

// MaxSnapshots is the number of rotated snapshots kept in addition to the
// live one.
const MaxSnapshots = 3

var (
	// ErrSnapshotMissing means a required snapshot does not exist. This is
	// a distinct condition from corruption: nothing was found, so nothing
	// was damaged.
	ErrSnapshotMissing = errors.New("snapshot missing")

	// ErrMalformedChecksum means the stored checksum itself is unusable
	// (absent or not exactly ChecksumSize bytes), so the content could not
	// be verified at all.
	ErrMalformedChecksum = errors.New("malformed checksum file")

	// ErrCorruptedSnapshot means the content does not match its checksum.
	ErrCorruptedSnapshot = errors.New("snapshot corrupted")
)

// Slot identifies a snapshot within one store instance.
type Slot int

const (
	// DefaultSlot holds read-only default values.
	DefaultSlot Slot = -1
	// LiveSlot holds the most recently flushed data.
	LiveSlot Slot = 0
)

func (slot Slot) String() string {
	if slot == DefaultSlot {
		return "default"
	}
	return strconv.Itoa(int(slot))
}

// Backend stores snapshots for a single store instance. Backends are not
// safe for concurrent use.
type Backend interface {
	// Load reads and verifies the snapshot in slot. A missing snapshot is
	// an error only when required, otherwise Load returns (nil, nil). A
	// snapshot that exists but fails verification or decoding is an error
	// regardless of required.
	Load(slot Slot, required bool) (map[string]kvval.Value, error)

	// Save replaces the snapshot in slot with data, atomically with
	// respect to crashes: after a failure the slot holds either the old
	// snapshot or the new one, never a torn mix.
	Save(slot Slot, data map[string]kvval.Value) error

	// Exists reports whether slot holds snapshot content. It does not
	// verify the content.
	Exists(slot Slot) bool

	// Rotate shifts every numbered snapshot into the next older slot,
	// dropping the oldest. The live slot is vacant afterwards until the
	// next Save.
	Rotate() error

	// Count returns the number of contiguous rotated snapshots available
	// for restore, and zero when the live slot is vacant.
	Count() int

	Close() error
}

// PathResolver is implemented by backends whose snapshots live in the
// file system.
type PathResolver interface {
	ContentPath(slot Slot) string
	ChecksumPath(slot Slot) string
}

// ContentFileName returns the file name of a snapshot's JSON content.
func ContentFileName(instance int, slot Slot) string {
	return fmt.Sprintf("kvs_%d_%v.json", instance, slot)
}

// ChecksumFileName returns the file name of a snapshot's checksum.
func ChecksumFileName(instance int, slot Slot) string {
	return fmt.Sprintf("kvs_%d_%v.hash", instance, slot)
}
