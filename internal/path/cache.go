package path

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Compiled expressions are cached process-wide. Readers over many files
// typically reuse a handful of paths; compiling each once is enough.
var cache = struct {
	sync.RWMutex
	m map[uint64]*Expression
}{m: make(map[uint64]*Expression)}

// maxCachedExpressions bounds the cache for adversarial path churn.
const maxCachedExpressions = 256

// Compile parses a path expression, consulting the compile cache first.
func Compile(text string) (*Expression, error) {
	key := xxhash.Sum64String(text)

	cache.RLock()
	if e, ok := cache.m[key]; ok && e.Text() == text {
		cache.RUnlock()
		return e, nil
	}
	cache.RUnlock()

	e, err := parse(text)
	if err != nil {
		return nil, err
	}

	cache.Lock()
	if len(cache.m) < maxCachedExpressions {
		cache.m[key] = e
	}
	cache.Unlock()
	return e, nil
}
