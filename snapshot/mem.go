package snapshot

import (
	"fmt"
	"slices"

	"github.com/andreyvit/kvs/kvval"
)

// MemBackend keeps snapshots in memory, for tests and ephemeral stores.
// It stores encoded bytes rather than live maps so that verification,
// rotation and corruption behave exactly like the durable backends.
type MemBackend struct {
	snaps map[Slot]*memSnapshot
}

type memSnapshot struct {
	content  []byte
	checksum []byte
}

var _ Backend = (*MemBackend)(nil)

func NewMemBackend() *MemBackend {
	return &MemBackend{snaps: make(map[Slot]*memSnapshot)}
}

func (b *MemBackend) Load(slot Slot, required bool) (map[string]kvval.Value, error) {
	snap := b.snaps[slot]
	if snap == nil {
		if required {
			return nil, fmt.Errorf("slot %v: %w", slot, ErrSnapshotMissing)
		}
		return nil, nil
	}
	if len(snap.checksum) != ChecksumSize {
		return nil, fmt.Errorf("slot %v: %w: %d bytes instead of %d", slot, ErrMalformedChecksum, len(snap.checksum), ChecksumSize)
	}
	if !VerifyChecksum(snap.content, snap.checksum) {
		sum := Checksum(snap.content)
		return nil, fmt.Errorf("slot %v: %w: stored checksum %x, computed %x", slot, ErrCorruptedSnapshot, snap.checksum, sum)
	}
	data, err := kvval.DecodeMap(snap.content)
	if err != nil {
		return nil, fmt.Errorf("slot %v: %w", slot, err)
	}
	return data, nil
}

func (b *MemBackend) Save(slot Slot, data map[string]kvval.Value) error {
	content, err := kvval.EncodeMap(data)
	if err != nil {
		return err
	}
	sum := Checksum(content)
	b.snaps[slot] = &memSnapshot{content: content, checksum: sum[:]}
	return nil
}

func (b *MemBackend) Exists(slot Slot) bool {
	return b.snaps[slot] != nil
}

func (b *MemBackend) Rotate() error {
	for i := MaxSnapshots - 1; i >= 0; i-- {
		snap := b.snaps[Slot(i)]
		if snap == nil {
			continue
		}
		b.snaps[Slot(i+1)] = snap
		delete(b.snaps, Slot(i))
	}
	return nil
}

func (b *MemBackend) Count() int {
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

func (b *MemBackend) Close() error { return nil }

// Corrupt flips a byte of the stored content, leaving the checksum
// untouched, so that subsequent loads of the slot fail verification. It
// reports whether there was a snapshot to corrupt.
func (b *MemBackend) Corrupt(slot Slot) bool {
	snap := b.snaps[slot]
	if snap == nil || len(snap.content) == 0 {
		return false
	}
	snap.content = slices.Clone(snap.content)
	snap.content[0] ^= 0xFF
	return true
}
