package engine

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/chazu/capscript/vm"
)

// Cache memoizes compiled programs by exact source text. It never evicts;
// entries live as long as the Cache. Cached programs are shared and must be
// treated as read-only.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*vm.Program
	group   singleflight.Group

	hits     atomic.Int64
	misses   atomic.Int64
	compiles atomic.Int64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries  int
	Hits     int64
	Misses   int64
	Compiles int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*vm.Program)}
}

// Get returns the program cached for source, if any.
func (c *Cache) Get(source string) (*vm.Program, bool) {
	c.mu.RLock()
	p, ok := c.entries[source]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return p, ok
}

// Put stores program under source, replacing any previous entry.
func (c *Cache) Put(source string, program *vm.Program) {
	c.mu.Lock()
	c.entries[source] = program
	c.mu.Unlock()
}

// GetOrCompile returns the cached program for source, or runs compile and
// caches its result. Concurrent callers with the same source share one
// compile call. Failed compiles are not cached. hit reports whether the
// program came from the cache without compiling.
func (c *Cache) GetOrCompile(source string, compile func() (*vm.Program, error)) (program *vm.Program, hit bool, err error) {
	if p, ok := c.Get(source); ok {
		return p, true, nil
	}

	v, err, _ := c.group.Do(source, func() (any, error) {
		// Another caller may have finished between Get and Do.
		c.mu.RLock()
		p, ok := c.entries[source]
		c.mu.RUnlock()
		if ok {
			return p, nil
		}

		c.compiles.Add(1)
		p, err := compile()
		if err != nil {
			return nil, err
		}
		c.Put(source, p)
		return p, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*vm.Program), false, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:  c.Len(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Compiles: c.compiles.Load(),
	}
}
