package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/andreyvit/kvs/kvval"
	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

const (
	boltTimeout     = 10 * time.Second
	frameHeaderSize = 8
)

var boltBucketName = []byte("snapshots")

// BoltBackend keeps all slots of one instance in a single bbolt database,
// one bucket entry per slot, instead of loose file pairs. Entries are
// framed with an xxhash checksum over their msgpack payload, keeping
// verification independent of the storage medium.
type BoltBackend struct {
	bdb    *bbolt.DB
	path   string
	logger *slog.Logger
}

var _ Backend = (*BoltBackend)(nil)

// NewBoltBackend opens <root>/<process>/kvs_<instance>.db, creating the
// directory and the database as needed. Pass a nil logger to use
// slog.Default().
func NewBoltBackend(root, process string, instance int, logger *slog.Logger) (*BoltBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Join(root, process)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("kvs_%d.db", instance))

	bopt := *bbolt.DefaultOptions
	bopt.Timeout = boltTimeout
	bdb, err := bbolt.Open(path, 0o666, &bopt)
	if err != nil {
		return nil, err
	}
	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucketName)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}
	return &BoltBackend{bdb: bdb, path: path, logger: logger}, nil
}

// Path returns the database file holding this backend's snapshots.
func (b *BoltBackend) Path() string { return b.path }

func (b *BoltBackend) Load(slot Slot, required bool) (map[string]kvval.Value, error) {
	var data map[string]kvval.Value
	err := b.bdb.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(boltBucketName).Get(slotKey(slot))
		if raw == nil {
			if required {
				return fmt.Errorf("slot %v: %w", slot, ErrSnapshotMissing)
			}
			return nil
		}
		var err error
		data, err = b.decodeFrame(slot, raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *BoltBackend) Save(slot Slot, data map[string]kvval.Value) error {
	frame, err := encodeFrame(data)
	if err != nil {
		return err
	}
	return b.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucketName).Put(slotKey(slot), frame)
	})
}

func (b *BoltBackend) Exists(slot Slot) bool {
	var found bool
	b.bdb.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(boltBucketName).Get(slotKey(slot)) != nil
		return nil
	})
	return found
}

func (b *BoltBackend) Rotate() error {
	return b.bdb.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(boltBucketName)
		for i := MaxSnapshots - 1; i >= 0; i-- {
			raw := bucket.Get(slotKey(Slot(i)))
			if raw == nil {
				continue
			}
			if err := bucket.Put(slotKey(Slot(i+1)), slices.Clone(raw)); err != nil {
				return err
			}
			if err := bucket.Delete(slotKey(Slot(i))); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltBackend) Count() int {
	var n int
	b.bdb.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(boltBucketName)
		if bucket.Get(slotKey(LiveSlot)) == nil {
			return nil
		}
		for i := 1; i <= MaxSnapshots; i++ {
			if bucket.Get(slotKey(Slot(i))) == nil {
				break
			}
			n = i
		}
		return nil
	})
	return n
}

func (b *BoltBackend) Close() error {
	return b.bdb.Close()
}

func (b *BoltBackend) decodeFrame(slot Slot, raw []byte) (map[string]kvval.Value, error) {
	if len(raw) < frameHeaderSize {
		return nil, fmt.Errorf("slot %v: %w: %d bytes is too short for a frame", slot, ErrMalformedChecksum, len(raw))
	}
	stored := binary.LittleEndian.Uint64(raw)
	payload := raw[frameHeaderSize:]
	if computed := xxhash.Sum64(payload); stored != computed {
		b.logger.LogAttrs(context.Background(), slog.LevelWarn, "kvs: snapshot corrupted",
			slog.String("slot", slot.String()),
			slog.String("stored", fmt.Sprintf("%016x", stored)),
			slog.String("computed", fmt.Sprintf("%016x", computed)))
		return nil, fmt.Errorf("slot %v: %w: stored checksum %016x, computed %016x", slot, ErrCorruptedSnapshot, stored, computed)
	}

	var data map[string]kvval.Value
	if err := msgpack.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("slot %v: %w: %v", slot, kvval.ErrMalformed, err)
	}
	if data == nil {
		data = make(map[string]kvval.Value)
	}
	return data, nil
}

func encodeFrame(data map[string]kvval.Value) ([]byte, error) {
	if data == nil {
		data = map[string]kvval.Value{}
	}
	var buf bytes.Buffer
	var hdr [frameHeaderSize]byte
	buf.Write(hdr[:])

	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(data)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, err
	}

	frame := buf.Bytes()
	binary.LittleEndian.PutUint64(frame, xxhash.Sum64(frame[frameHeaderSize:]))
	return frame, nil
}

func slotKey(slot Slot) []byte {
	return []byte(slot.String())
}
