package cache

import (
	"container/list"
	"sync"
)

// LRUCache is a size-bounded cache evicting the least recently used entry.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	lru     *list.List

	hits, misses int
}

type cacheItem[T any] struct {
	key  string
	data T
}

var _ Cache[int] = (*LRUCache[int])(nil)

// NewLRUCache creates a cache holding at most maxSize entries (minimum 1).
func NewLRUCache[T any](maxSize int) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		var zero T
		return zero, false
	}
	c.hits++
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheItem[T]).data, true
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value = &cacheItem[T]{key: key, data: data}
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(&cacheItem[T]{key: key, data: data})

	if c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		delete(c.items, oldest.Value.(*cacheItem[T]).key)
		c.lru.Remove(oldest)
	}
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counters since creation.
func (c *LRUCache[T]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
