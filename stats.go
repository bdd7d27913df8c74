package kvs

// Stats is a point-in-time summary of a store, for monitoring and test
// assertions.
type Stats struct {
	Keys      int
	Defaults  int
	Snapshots int
	Flushes   int
}

func (s *Store) Stats() Stats {
	if s.closed {
		return Stats{Flushes: s.flushCount}
	}
	return Stats{
		Keys:      len(s.data),
		Defaults:  len(s.defaults),
		Snapshots: s.backend.Count(),
		Flushes:   s.flushCount,
	}
}
