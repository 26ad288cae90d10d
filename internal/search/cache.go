package search

import (
	"container/list"
	"sync"
)

// Cache provides LRU caching of search results keyed by query. The picker
// reuses results while the user navigates without retyping; it calls
// Clear whenever the item collection is reloaded, since entries are only
// valid for the collection they were computed from.
//
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	maxSize int
	items   map[string]*list.Element
	lru     *list.List
}

// cacheEntry holds one cached query result.
type cacheEntry struct {
	query   string
	results []Result
}

// NewCache creates an LRU cache holding at most maxSize queries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Cache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves cached results for a query, or nil if absent.
func (c *Cache) Get(query string) []Result {
	// Read lock first for the common miss case.
	c.mu.RLock()
	_, ok := c.items[query]
	if !ok {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	// Hit: write lock to update LRU order.
	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check in case the entry was evicted between locks.
	elem, ok := c.items[query]
	if !ok {
		return nil
	}

	c.lru.MoveToFront(elem)

	entry := elem.Value.(*cacheEntry) //nolint:errcheck // list only contains *cacheEntry

	// Return a copy so callers cannot corrupt the cached slice.
	results := make([]Result, len(entry.results))
	copy(results, entry.results)
	return results
}

// Set stores results for a query.
func (c *Cache) Set(query string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[query]; ok {
		c.lru.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry) //nolint:errcheck // list only contains *cacheEntry
		entry.results = copyResults(results)
		return
	}

	if c.lru.Len() >= c.maxSize {
		c.evictOldest()
	}

	entry := &cacheEntry{
		query:   query,
		results: copyResults(results),
	}
	c.items[query] = c.lru.PushFront(entry)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// evictOldest removes the least recently used entry. Lock must be held.
func (c *Cache) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	c.lru.Remove(elem)
	entry := elem.Value.(*cacheEntry) //nolint:errcheck // list only contains *cacheEntry
	delete(c.items, entry.query)
}

// copyResults deep-copies the mutable parts of results. Item references
// are shared with the input collection on purpose.
func copyResults(results []Result) []Result {
	copied := make([]Result, len(results))
	for i, r := range results {
		copied[i] = Result{
			Item:  r.Item,
			Score: r.Score,
			Key:   r.Key,
		}
		if r.Positions != nil {
			copied[i].Positions = make([]int, len(r.Positions))
			copy(copied[i].Positions, r.Positions)
		}
	}
	return copied
}
