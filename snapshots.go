package kvs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/andreyvit/kvs/snapshot"
)

// SnapshotCount returns the number of rotated snapshots available for
// SnapshotRestore, and zero on a closed store.
func (s *Store) SnapshotCount() int {
	if s.closed {
		return 0
	}
	return s.backend.Count()
}

// SnapshotMaxCount returns the largest value SnapshotCount can reach.
func (s *Store) SnapshotMaxCount() int {
	return snapshot.MaxSnapshots
}

// SnapshotRestore replaces the store's data with the rotated snapshot
// id, 1 being the most recent rotation. The restored data stays
// in-memory like any other write: the stored snapshots are untouched
// until the next flush.
func (s *Store) SnapshotRestore(id int) error {
	if s.closed {
		return ErrClosed
	}
	if id <= 0 || id > snapshot.MaxSnapshots {
		return fmt.Errorf("kvs: snapshot %d: %w", id, ErrInvalidSnapshotID)
	}
	if count := s.backend.Count(); id > count {
		return fmt.Errorf("kvs: snapshot %d: %w: only %d available", id, ErrInvalidSnapshotID, count)
	}
	data, err := s.backend.Load(snapshot.Slot(id), true)
	if err != nil {
		return fmt.Errorf("kvs: restoring snapshot %d: %w", id, err)
	}
	s.data = data
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvs: snapshot restored",
		slog.Int("id", id), slog.Int("keys", len(data)))
	return nil
}

// SnapshotContentPath returns the path of the file holding the content
// of the given snapshot id, 0 being the live snapshot. The path is pure
// formatting: the snapshot does not have to exist. Backends that do not
// map slots to files return errors.ErrUnsupported.
func (s *Store) SnapshotContentPath(id int) (string, error) {
	r, err := s.pathResolver(id)
	if err != nil {
		return "", err
	}
	return r.ContentPath(snapshot.Slot(id)), nil
}

// SnapshotChecksumPath is SnapshotContentPath for the checksum file.
func (s *Store) SnapshotChecksumPath(id int) (string, error) {
	r, err := s.pathResolver(id)
	if err != nil {
		return "", err
	}
	return r.ChecksumPath(snapshot.Slot(id)), nil
}

func (s *Store) pathResolver(id int) (snapshot.PathResolver, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if id < 0 || id > snapshot.MaxSnapshots {
		return nil, fmt.Errorf("kvs: snapshot %d: %w", id, ErrInvalidSnapshotID)
	}
	r, resolves := s.backend.(snapshot.PathResolver)
	if !resolves {
		return nil, fmt.Errorf("kvs: %T: %w", s.backend, errors.ErrUnsupported)
	}
	return r, nil
}
