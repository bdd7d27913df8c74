package kvs

import (
	"errors"

	"github.com/andreyvit/kvs/kvval"
	"github.com/andreyvit/kvs/snapshot"
)

var (
	// ErrKeyNotFound means the key is present neither in the store nor
	// among its defaults.
	ErrKeyNotFound = errors.New("key not found")

	// ErrClosed means the store has been closed.
	ErrClosed = errors.New("store is closed")

	// ErrAlreadyOpen means another store in this process currently owns
	// the same instance.
	ErrAlreadyOpen = errors.New("instance already open")

	// ErrInvalidSnapshotID means the snapshot id is out of range or
	// names a snapshot that does not currently exist.
	ErrInvalidSnapshotID = errors.New("invalid snapshot id")
)

// Storage and decoding failures surface unchanged from the inner
// packages; these aliases save callers an extra import.
var (
	ErrSnapshotMissing   = snapshot.ErrSnapshotMissing
	ErrMalformedChecksum = snapshot.ErrMalformedChecksum
	ErrCorruptedSnapshot = snapshot.ErrCorruptedSnapshot
	ErrMalformedContent  = kvval.ErrMalformed
	ErrTypeMismatch      = kvval.ErrTypeMismatch
)
