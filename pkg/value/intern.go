package value

import "sync"

// intern provides string interning for object member keys.
// Large streamed documents repeat the same small key set across millions
// of members; reusing one string instance per key keeps them off the heap.
var intern = newStringInterner()

// maxInternedKeyLen bounds the keys worth interning. Long keys are
// usually unique and would only grow the table.
const maxInternedKeyLen = 64

// maxInternedKeys bounds the table size for adversarial inputs.
const maxInternedKeys = 4096

// stringInterner manages interned key strings.
type stringInterner struct {
	mu      sync.RWMutex
	strings map[string]string
}

// newStringInterner creates a new string interner with common member keys pre-populated.
func newStringInterner() *stringInterner {
	si := &stringInterner{
		strings: make(map[string]string, 32),
	}

	commonKeys := []string{
		"id", "name", "type", "value", "key",
		"data", "items", "results", "children",
		"title", "description", "url", "status",
		"created", "updated", "count", "total",
	}

	for _, s := range commonKeys {
		si.strings[s] = s
	}

	return si
}

// Get returns an interned version of the string.
// If the string is already interned, returns the existing instance.
// Otherwise, interns the new string and returns it.
func (si *stringInterner) Get(s string) string {
	// Fast path: read lock for existing strings
	si.mu.RLock()
	if interned, ok := si.strings[s]; ok {
		si.mu.RUnlock()
		return interned
	}
	full := len(si.strings) >= maxInternedKeys
	si.mu.RUnlock()

	if full {
		return s
	}

	// Slow path: write lock to add new string
	si.mu.Lock()
	defer si.mu.Unlock()

	// Double-check in case another goroutine added it
	if interned, ok := si.strings[s]; ok {
		return interned
	}

	si.strings[s] = s
	return s
}

// InternKey returns an interned version of an object member key.
func InternKey(s string) string {
	if len(s) > maxInternedKeyLen {
		return s
	}
	return intern.Get(s)
}
