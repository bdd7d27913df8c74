package kvs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andreyvit/kvs/kvval"
	"github.com/andreyvit/kvs/snapshot"
)

func TestSnapshotRotation(t *testing.T) {
	s := openStore(t, t.TempDir(), Options{Process: "app"})
	deepEqual(t, s.SnapshotMaxCount(), snapshot.MaxSnapshots)
	deepEqual(t, s.SnapshotCount(), 0)

	for i := 1; i <= snapshot.MaxSnapshots+2; i++ {
		ensure(s.Set("counter", kvval.Number(float64(i))))
		ensure(s.Flush())
		deepEqual(t, s.SnapshotCount(), min(i-1, snapshot.MaxSnapshots))
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := openStore(t, t.TempDir(), Options{Process: "app"})
	for i := 1; i <= 3; i++ {
		ensure(s.Set("counter", kvval.Number(float64(i))))
		ensure(s.Flush())
	}
	deepEqual(t, s.SnapshotCount(), 2)

	livePath := must(s.SnapshotContentPath(0))
	before := must(os.ReadFile(livePath))

	ensure(s.SnapshotRestore(1))
	deepEqual(t, must(must(s.Get("counter")).AsNumber()), 2.0)

	// Restore only changes memory; the stored snapshots are untouched
	// until the next flush.
	deepEqual(t, string(must(os.ReadFile(livePath))), string(before))
	deepEqual(t, s.SnapshotCount(), 2)

	ensure(s.SnapshotRestore(2))
	deepEqual(t, must(must(s.Get("counter")).AsNumber()), 1.0)

	// Flushing afterwards makes the restored state the new live
	// snapshot, pushing the others one generation older.
	ensure(s.Flush())
	deepEqual(t, must(must(s.Get("counter")).AsNumber()), 1.0)
	ensure(s.SnapshotRestore(1))
	deepEqual(t, must(must(s.Get("counter")).AsNumber()), 3.0)
}

func TestSnapshotRestoreInvalidID(t *testing.T) {
	s := openStore(t, t.TempDir(), Options{Process: "app"})
	ensure(s.Set("counter", kvval.Number(1)))
	ensure(s.Flush())
	ensure(s.Flush())
	deepEqual(t, s.SnapshotCount(), 1)

	wantErrIs(t, s.SnapshotRestore(0), ErrInvalidSnapshotID)
	wantErrIs(t, s.SnapshotRestore(-1), ErrInvalidSnapshotID)
	wantErrIs(t, s.SnapshotRestore(2), ErrInvalidSnapshotID)
	wantErrIs(t, s.SnapshotRestore(snapshot.MaxSnapshots+1), ErrInvalidSnapshotID)
}

func TestSnapshotPaths(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir, Options{Process: "app", Instance: 2})

	deepEqual(t, must(s.SnapshotContentPath(0)), filepath.Join(dir, "app", "kvs_2_0.json"))
	deepEqual(t, must(s.SnapshotChecksumPath(0)), filepath.Join(dir, "app", "kvs_2_0.hash"))

	// Paths are pure formatting: snapshot 3 does not exist yet.
	deepEqual(t, must(s.SnapshotContentPath(3)), filepath.Join(dir, "app", "kvs_2_3.json"))

	wantErrIs(t, sndErr(s.SnapshotContentPath(-1)), ErrInvalidSnapshotID)
	wantErrIs(t, sndErr(s.SnapshotChecksumPath(snapshot.MaxSnapshots+1)), ErrInvalidSnapshotID)
}
