// Package cache provides a capacity-bounded cache of shared handles. The
// cache owns a strong handle to each resident entry; entries pushed out by
// the LRU are released but stay observable through a weak index, so an
// object still owned elsewhere can be revived without rebuilding it.
package cache

import (
	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/harkal/refptr"
)

type Cache[K comparable, V any] struct {
	lru  *simplelru.LRU
	weak map[K]refptr.Weak[V]
}

// New creates a cache that keeps at most size objects alive.
func New[K comparable, V any](size int) (*Cache[K, V], error) {
	c := &Cache[K, V]{
		weak: make(map[K]refptr.Weak[V]),
	}
	lru, err := simplelru.NewLRU(size, func(key, value interface{}) {
		s := value.(refptr.Strong[V])
		s.Release()
	})
	if err != nil {
		return nil, err
	}
	c.lru = lru
	return c, nil
}

// Put stores an owning copy of s under k. The caller keeps its own handle.
func (c *Cache[K, V]) Put(k K, s refptr.Strong[V]) {
	if s.IsNull() {
		return
	}
	// simplelru's Add overwrites an existing value without firing the evict
	// callback, which would leak the strong handle stored there.
	c.lru.Remove(k)
	c.lru.Add(k, s.Clone())

	if w, ok := c.weak[k]; ok {
		w.Release()
	}
	c.weak[k] = s.Downgrade()
}

// Get returns an owning copy of the entry under k. A resident entry is an
// LRU hit; a non-resident entry whose object is still owned elsewhere is
// revived into the LRU. The second result is false when no live object
// remains.
func (c *Cache[K, V]) Get(k K) (refptr.Strong[V], bool) {
	if v, ok := c.lru.Get(k); ok {
		s := v.(refptr.Strong[V])
		return s.Clone(), true
	}

	w, ok := c.weak[k]
	if !ok {
		return refptr.Strong[V]{}, false
	}
	s := w.Lock()
	if s.IsNull() {
		w.Release()
		delete(c.weak, k)
		return refptr.Strong[V]{}, false
	}
	c.lru.Add(k, s.Clone())
	return s, true
}

// Remove drops the entry under k, releasing the cache's handles to it.
func (c *Cache[K, V]) Remove(k K) {
	c.lru.Remove(k)
	if w, ok := c.weak[k]; ok {
		w.Release()
		delete(c.weak, k)
	}
}

// Purge releases every handle the cache holds.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
	for k, w := range c.weak {
		w.Release()
		delete(c.weak, k)
	}
}

// Len reports the number of resident entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}
