package kvs

import (
	"fmt"
	"slices"
	"strings"
)

// Dump formats the effective contents of the store for logs and test
// failures: one sorted "key = value" line per visible key, marking the
// entries that come from the defaults.
func (s *Store) Dump() string {
	keys := make(map[string]bool, len(s.data)+len(s.defaults))
	for k := range s.data {
		keys[k] = true
	}
	for k := range s.defaults {
		keys[k] = true
	}

	var sortedKeys []string
	for k := range keys {
		sortedKeys = append(sortedKeys, k)
	}
	slices.Sort(sortedKeys)

	var buf strings.Builder
	for _, k := range sortedKeys {
		if v, found := s.data[k]; found {
			fmt.Fprintf(&buf, "%s = %v\n", k, v)
		} else {
			fmt.Fprintf(&buf, "%s = %v (default)\n", k, s.defaults[k])
		}
	}
	return buf.String()
}
