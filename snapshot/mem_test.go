package snapshot

import (
	"errors"
	"testing"
)

func TestMemBackendContract(t *testing.T) {
	checkBackendContract(t, NewMemBackend())
}

func TestMemBackendCorrupt(t *testing.T) {
	b := NewMemBackend()
	ensure(b.Save(LiveSlot, sampleData(1)))

	deepEqual(t, b.Corrupt(Slot(2)), false)
	deepEqual(t, b.Corrupt(LiveSlot), true)
	deepEqual(t, b.Exists(LiveSlot), true)

	for _, required := range []bool{true, false} {
		if _, err := b.Load(LiveSlot, required); !errors.Is(err, ErrCorruptedSnapshot) {
			t.Errorf("** required=%v: got %v, wanted ErrCorruptedSnapshot", required, err)
		}
	}

	// A fresh save heals the slot.
	ensure(b.Save(LiveSlot, sampleData(2)))
	equalMaps(t, must(b.Load(LiveSlot, true)), sampleData(2))
}
