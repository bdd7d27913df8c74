package kvs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/andreyvit/kvs/kvval"
	"github.com/andreyvit/kvs/snapshot"
)

// Policy says how to treat a stored snapshot when opening a store.
type Policy int

const (
	// Optional loads the snapshot if present and starts empty otherwise.
	Optional Policy = iota
	// Required fails Open when the snapshot is absent.
	Required
	// Ignored skips loading entirely. Only valid for defaults.
	Ignored
)

func (p Policy) String() string {
	switch p {
	case Optional:
		return "optional"
	case Required:
		return "required"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

type Options struct {
	// Process names the subdirectory grouping all stores of one process.
	// Required.
	Process string

	// Instance distinguishes multiple stores of the same process.
	Instance int

	// Defaults says whether the defaults snapshot must exist, may exist
	// or is skipped.
	Defaults Policy

	// Snapshot says whether the live snapshot must exist. Ignored is not
	// a valid choice here: an existing live snapshot is never skipped.
	Snapshot Policy

	// NoFlushOnClose disables the flush that Close performs by default.
	NoFlushOnClose bool

	// Backend overrides the storage. When nil, Open uses a
	// snapshot.FileBackend rooted at the dir argument. The store owns
	// the backend either way and closes it together with the store.
	Backend snapshot.Backend

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Store is an in-memory key-value store persisted through verified
// snapshots. All durable state lives in the snapshot backend; between
// explicit flushes, writes only touch memory.
//
// A Store is single-threaded. Callers that share one across goroutines
// must do their own locking.
type Store struct {
	backend  snapshot.Backend
	logger   *slog.Logger
	process  string
	instance int
	guardKey string

	data     map[string]kvval.Value
	defaults map[string]kvval.Value

	flushOnClose bool
	closed       bool
	flushCount   int
}

// Open loads the defaults and the live snapshot of the given instance
// and returns a store over them. Missing snapshots are tolerated or not
// per the policies in opt; a snapshot that exists but fails checksum
// verification or decoding aborts Open regardless of policy.
//
// Each instance can be open only once per process; Close releases it.
func Open(dir string, opt Options) (*Store, error) {
	if opt.Process == "" {
		return nil, fmt.Errorf("kvs: missing process name")
	}
	if strings.ContainsAny(opt.Process, `/\`) || opt.Process == "." || opt.Process == ".." {
		return nil, fmt.Errorf("kvs: invalid process name %q", opt.Process)
	}
	if opt.Instance < 0 {
		return nil, fmt.Errorf("kvs: invalid instance %d", opt.Instance)
	}
	if opt.Snapshot == Ignored {
		return nil, fmt.Errorf("kvs: the live snapshot cannot be ignored")
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	guardKey, err := acquireInstance(dir, opt.Process, opt.Instance)
	if err != nil {
		return nil, err
	}
	var ok bool
	defer releaseUnlessOK(guardKey, &ok)

	backend := opt.Backend
	if backend == nil {
		backend, err = snapshot.NewFileBackend(dir, opt.Process, opt.Instance, logger)
		if err != nil {
			return nil, fmt.Errorf("kvs: %w", err)
		}
	}
	defer func() {
		if !ok {
			backend.Close()
		}
	}()

	var defaults map[string]kvval.Value
	if opt.Defaults != Ignored {
		defaults, err = backend.Load(snapshot.DefaultSlot, opt.Defaults == Required)
		if err != nil {
			return nil, fmt.Errorf("kvs: loading defaults: %w", err)
		}
	}
	data, err := backend.Load(snapshot.LiveSlot, opt.Snapshot == Required)
	if err != nil {
		return nil, fmt.Errorf("kvs: loading snapshot: %w", err)
	}
	if defaults == nil {
		defaults = make(map[string]kvval.Value)
	}
	if data == nil {
		data = make(map[string]kvval.Value)
	}

	s := &Store{
		backend:      backend,
		logger:       logger,
		process:      opt.Process,
		instance:     opt.Instance,
		guardKey:     guardKey,
		data:         data,
		defaults:     defaults,
		flushOnClose: !opt.NoFlushOnClose,
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "kvs: opened",
		slog.String("process", opt.Process), slog.Int("instance", opt.Instance),
		slog.Int("keys", len(data)), slog.Int("defaults", len(defaults)))
	ok = true
	return s, nil
}

// Flush rotates the stored snapshots one generation older and writes the
// current data as the new live snapshot. Flushing unchanged data writes
// byte-identical content.
func (s *Store) Flush() error {
	if s.closed {
		return ErrClosed
	}
	if err := s.backend.Rotate(); err != nil {
		return fmt.Errorf("kvs: rotating snapshots: %w", err)
	}
	if err := s.backend.Save(snapshot.LiveSlot, s.data); err != nil {
		return fmt.Errorf("kvs: writing snapshot: %w", err)
	}
	s.flushCount++
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvs: flushed",
		slog.String("process", s.process), slog.Int("instance", s.instance),
		slog.Int("keys", len(s.data)))
	return nil
}

// Close flushes unless NoFlushOnClose was set, releases the instance and
// closes the backend. Once closed, every operation returns ErrClosed, so
// the implicit flush happens at most once no matter how Close is reached.
func (s *Store) Close() error {
	if s.closed {
		return ErrClosed
	}
	var flushErr error
	if s.flushOnClose {
		flushErr = s.Flush()
	}
	s.closed = true
	releaseInstance(s.guardKey)
	closeErr := s.backend.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
