package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is the in-process tier for provider lookups that rarely change, such
// as a mint's collection or a KAS contract's metadata. Entries expire ttl
// after they were last written; the least recently read entry is evicted
// once capacity is reached.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	byKey    map[K]*list.Element
	recency  *list.List // front is most recently used
	now      func() time.Time

	hits   int64
	misses int64
}

type slot[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// NewLRU holds up to capacity entries for ttl each. A capacity below one is
// raised to one.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	capacity = max(capacity, 1)
	return &LRU[K, V]{
		capacity: capacity,
		ttl:      ttl,
		byKey:    make(map[K]*list.Element, capacity),
		recency:  list.New(),
		now:      time.Now,
	}
}

// Get returns the live value under key. An expired entry is dropped and
// counts as a miss.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.byKey[key]; ok {
		s := elem.Value.(*slot[K, V])
		if !c.now().After(s.expires) {
			c.recency.MoveToFront(elem)
			c.hits++
			return s.value, true
		}
		c.drop(elem)
	}
	c.misses++
	var zero V
	return zero, false
}

// Put stores value under key and restarts its ttl.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if elem, ok := c.byKey[key]; ok {
		s := elem.Value.(*slot[K, V])
		s.value, s.expires = value, expires
		c.recency.MoveToFront(elem)
		return
	}
	for c.recency.Len() >= c.capacity {
		c.drop(c.recency.Back())
	}
	c.byKey[key] = c.recency.PushFront(&slot[K, V]{key: key, value: value, expires: expires})
}

func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.byKey[key]; ok {
		c.drop(elem)
	}
}

// Len counts stored entries, expired ones not yet read included.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

// Stats returns the hit and miss counts since creation.
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *LRU[K, V]) drop(elem *list.Element) {
	c.recency.Remove(elem)
	delete(c.byKey, elem.Value.(*slot[K, V]).key)
}
