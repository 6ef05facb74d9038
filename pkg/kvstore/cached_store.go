package kvstore

import (
	"container/list"
	"context"
	"errors"
	"sync"
)

// CachedStore fronts a slower Store with a bounded LRU of recently read or
// written values. Writes go through to the backend before the cache is updated,
// so a failed write never leaves a value in the cache that the backend lacks.
//
// The cache assumes it is the only writer of the backend. Another process
// writing the same keys will not be observed until the entry is evicted.
type CachedStore struct {
	next     Store
	capacity int

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key   string
	value string
}

// NewCachedStore wraps next with an LRU holding at most capacity values.
// Panics if capacity is not positive.
func NewCachedStore(next Store, capacity int) *CachedStore {
	if next == nil {
		panic("kvstore: cached store requires a backend")
	}
	if capacity <= 0 {
		panic("kvstore: cache capacity must be positive")
	}
	return &CachedStore{
		next:     next,
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

func (c *CachedStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err := c.next.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.forget(key)
		}
		return "", err
	}
	c.put(key, v)
	return v, nil
}

func (c *CachedStore) Set(ctx context.Context, key, value string) error {
	if err := c.next.Set(ctx, key, value); err != nil {
		c.forget(key)
		return err
	}
	c.put(key, value)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, key string) error {
	c.forget(key)
	return c.next.Delete(ctx, key)
}

// Stats returns cache hits and misses observed so far.
func (c *CachedStore) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached values.
func (c *CachedStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

func (c *CachedStore) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	c.eviction.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

func (c *CachedStore) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).value = value
		c.eviction.MoveToFront(elem)
		return
	}

	c.items[key] = c.eviction.PushFront(&cacheEntry{key: key, value: value})
	if c.eviction.Len() > c.capacity {
		oldest := c.eviction.Back()
		c.eviction.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func (c *CachedStore) forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.eviction.Remove(elem)
		delete(c.items, key)
	}
}
