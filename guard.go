package kvs

import (
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
)

// A second store over the same instance would silently diverge from the
// first at the next flush, so opens are interlocked process-wide.
var (
	openInstancesMu sync.Mutex
	openInstances   = make(map[string]bool)
)

func acquireInstance(dir, process string, instance int) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	key := abs + "|" + process + "|" + strconv.Itoa(instance)

	openInstancesMu.Lock()
	defer openInstancesMu.Unlock()
	if openInstances[key] {
		return "", fmt.Errorf("kvs: %s instance %d: %w", process, instance, ErrAlreadyOpen)
	}
	openInstances[key] = true
	return key, nil
}

func releaseInstance(key string) {
	openInstancesMu.Lock()
	defer openInstancesMu.Unlock()
	delete(openInstances, key)
}

func releaseUnlessOK(key string, ok *bool) {
	if *ok {
		return
	}
	releaseInstance(key)
}
