package kvs

import (
	"fmt"
	"slices"

	"github.com/andreyvit/kvs/kvval"
)

// Get returns the value for key, falling back to the defaults when the
// store itself has no entry.
func (s *Store) Get(key string) (kvval.Value, error) {
	if s.closed {
		return kvval.Value{}, ErrClosed
	}
	if v, found := s.data[key]; found {
		return v, nil
	}
	if v, found := s.defaults[key]; found {
		return v, nil
	}
	return kvval.Value{}, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
}

// GetAs returns the value for key converted to T via kvval.As.
func GetAs[T any](s *Store, key string) (T, error) {
	v, err := s.Get(key)
	if err != nil {
		var zero T
		return zero, err
	}
	return kvval.As[T](v)
}

// Set stores a value for key. The new value becomes durable at the next
// flush.
func (s *Store) Set(key string, v kvval.Value) error {
	if s.closed {
		return ErrClosed
	}
	if v.Kind() == kvval.KindInvalid {
		return fmt.Errorf("%q: %w: cannot store an invalid value", key, ErrTypeMismatch)
	}
	s.data[key] = v
	return nil
}

// SetAny converts x via kvval.FromAny and stores it.
func (s *Store) SetAny(key string, x any) error {
	v, err := kvval.FromAny(x)
	if err != nil {
		return fmt.Errorf("%q: %w", key, err)
	}
	return s.Set(key, v)
}

// Remove deletes the store's own entry for key. A default for the same
// key becomes visible again; defaults themselves are read-only and are
// never removed.
func (s *Store) Remove(key string) error {
	if s.closed {
		return ErrClosed
	}
	if _, found := s.data[key]; !found {
		return fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}
	delete(s.data, key)
	return nil
}

// Keys returns the store's own keys in sorted order. Defaults without an
// explicit entry are not listed.
func (s *Store) Keys() ([]string, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var keys []string
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Has reports whether the store itself has an entry for key, not
// counting defaults.
func (s *Store) Has(key string) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	_, found := s.data[key]
	return found, nil
}

// Reset drops every entry of the store, reverting all keys to their
// defaults. Like any other write, the reset state is durable only after
// a flush.
func (s *Store) Reset() error {
	if s.closed {
		return ErrClosed
	}
	clear(s.data)
	return nil
}

// GetDefault returns the default value for key regardless of what the
// store itself holds.
func (s *Store) GetDefault(key string) (kvval.Value, error) {
	if s.closed {
		return kvval.Value{}, ErrClosed
	}
	if v, found := s.defaults[key]; found {
		return v, nil
	}
	return kvval.Value{}, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
}

// IsDefault reports whether reading key currently yields its default,
// that is, a default exists and no explicit entry shadows it.
func (s *Store) IsDefault(key string) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	if _, found := s.data[key]; found {
		return false, nil
	}
	if _, found := s.defaults[key]; found {
		return true, nil
	}
	return false, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
}
