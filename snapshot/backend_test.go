package snapshot

import (
	"errors"
	"reflect"
	"testing"

	"github.com/andreyvit/kvs/kvval"
)

// checkBackendContract exercises the Backend behavior every
// implementation must share: optional and required loads of vacant
// slots, save and load round-trips, rotation order, the count rules and
// the independence of the default slot.
func checkBackendContract(t *testing.T, b Backend) {
	t.Helper()

	data := must(b.Load(LiveSlot, false))
	if data != nil {
		t.Errorf("** got %v, wanted nil for an optional load of a vacant slot", data)
	}
	_, err := b.Load(LiveSlot, true)
	if !errors.Is(err, ErrSnapshotMissing) {
		t.Errorf("** got %v, wanted ErrSnapshotMissing", err)
	}
	deepEqual(t, b.Exists(LiveSlot), false)
	deepEqual(t, b.Count(), 0)

	ensure(b.Save(LiveSlot, sampleData(1)))
	deepEqual(t, b.Exists(LiveSlot), true)
	equalMaps(t, must(b.Load(LiveSlot, true)), sampleData(1))
	equalMaps(t, must(b.Load(LiveSlot, false)), sampleData(1))
	deepEqual(t, b.Count(), 0)

	ensure(b.Rotate())
	deepEqual(t, b.Exists(LiveSlot), false)
	deepEqual(t, b.Count(), 0) // a vacant live slot hides rotated ones
	ensure(b.Save(LiveSlot, sampleData(2)))
	deepEqual(t, b.Count(), 1)
	equalMaps(t, must(b.Load(Slot(1), true)), sampleData(1))

	ensure(b.Rotate())
	ensure(b.Save(LiveSlot, sampleData(3)))
	deepEqual(t, b.Count(), 2)
	equalMaps(t, must(b.Load(Slot(1), true)), sampleData(2))
	equalMaps(t, must(b.Load(Slot(2), true)), sampleData(1))

	ensure(b.Rotate())
	ensure(b.Save(LiveSlot, sampleData(4)))
	ensure(b.Rotate())
	ensure(b.Save(LiveSlot, sampleData(5)))
	deepEqual(t, b.Count(), MaxSnapshots)
	equalMaps(t, must(b.Load(Slot(1), true)), sampleData(4))
	equalMaps(t, must(b.Load(Slot(2), true)), sampleData(3))
	equalMaps(t, must(b.Load(Slot(3), true)), sampleData(2))
	deepEqual(t, b.Exists(Slot(4)), false)

	ensure(b.Save(DefaultSlot, sampleData(100)))
	ensure(b.Rotate())
	equalMaps(t, must(b.Load(DefaultSlot, true)), sampleData(100))
}

func sampleData(n float64) map[string]kvval.Value {
	return map[string]kvval.Value{
		"counter": kvval.Number(n),
		"name":    kvval.String("press"),
		"flags":   kvval.Array(kvval.Bool(true), kvval.Null()),
		"limits":  kvval.Object(map[string]kvval.Value{"max": kvval.Number(100)}),
	}
}

func equalMaps(t testing.TB, got, want map[string]kvval.Value) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("** got %d keys (%v), wanted %d", len(got), got, len(want))
		return
	}
	for k, wv := range want {
		gv, found := got[k]
		if !found || !gv.Equal(wv) {
			t.Errorf("** key %q: got %v, wanted %v", k, gv, wv)
		}
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}
