package util

import (
	"container/list"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a bounded in-memory LRU cache. Concurrent misses of the same key share a
// single call of the loader; failed loads are not cached.
type Cache[T any] struct {
	size    int
	entries map[string]*list.Element
	order   *list.List
	group   singleflight.Group
	sync.Mutex
}

type cacheEntry[T any] struct {
	key   string
	value T
}

// NewCache returns a cache holding up to size values. A size of 0 disables caching:
// every Get calls the loader.
func NewCache[T any](size int) *Cache[T] {
	return &Cache[T]{size: size, entries: map[string]*list.Element{}, order: list.New()}
}

// Get returns the cached value for k, loading it with f on a miss. hit reports
// whether the value was served from the cache.
func (c *Cache[T]) Get(k string, f func() (T, error)) (v T, hit bool, err error) {
	if c.size == 0 {
		v, err := f()
		return v, false, err
	}
	if v, ok := c.lookup(k); ok {
		return v, true, nil
	}
	x, err, _ := c.group.Do(k, func() (any, error) {
		if v, ok := c.lookup(k); ok {
			return v, nil
		}
		v, err := f()
		if err != nil {
			return nil, err
		}
		c.add(k, v)
		return v, nil
	})
	if err != nil {
		return v, false, err
	}
	return x.(T), false, nil
}

func (c *Cache[T]) Len() int {
	c.Lock()
	defer c.Unlock()
	return c.order.Len()
}

func (c *Cache[T]) lookup(k string) (T, bool) {
	c.Lock()
	defer c.Unlock()
	if e, ok := c.entries[k]; ok {
		c.order.MoveToFront(e)
		return e.Value.(*cacheEntry[T]).value, true
	}
	return *new(T), false
}

func (c *Cache[T]) add(k string, v T) {
	c.Lock()
	defer c.Unlock()
	if e, ok := c.entries[k]; ok {
		e.Value.(*cacheEntry[T]).value = v
		c.order.MoveToFront(e)
		return
	}
	c.entries[k] = c.order.PushFront(&cacheEntry[T]{k, v})
	for c.order.Len() > c.size {
		e := c.order.Back()
		c.order.Remove(e)
		delete(c.entries, e.Value.(*cacheEntry[T]).key)
	}
}
