// Package cache implements the in-memory response cache shared by the HTTP
// handlers and the LLM client.
//
// The cache is a TTL map with least-recently-used eviction. Entries live in a
// fixed-capacity slab and are linked by 32-bit indices instead of pointers:
// a hash table with external chaining (FNV-1a over the key) for lookup, and
// a doubly linked recency list for eviction order. Values are refcounted so
// a reader can keep using a value's bytes while the entry is concurrently
// evicted or replaced.
package cache

import (
	"sync"
	"time"
)

// MaxKeyLen bounds cache keys. Longer keys are rejected by Set.
const MaxKeyLen = 256

// noIndex marks the absence of a slab link.
const noIndex = ^uint32(0)

// Metrics provides observability for cache operations. Implementations must
// be safe for concurrent use. Nil disables collection.
type Metrics interface {
	RecordHit()
	RecordMiss()
	RecordEviction()
	RecordSize(n int)
}

// entry is one slab slot. A free slot reuses next as the free-list link.
type entry struct {
	key       string
	value     *Value
	expiresAt time.Time

	prev       uint32 // recency list, towards MRU
	next       uint32 // recency list, towards LRU
	bucketNext uint32 // hash chain
}

// Cache is a fixed-capacity TTL+LRU map from string keys to byte values.
// All methods are safe for concurrent use.
type Cache struct {
	mu sync.RWMutex

	capacity   int
	defaultTTL time.Duration

	slab    []entry
	buckets []uint32 // head slot index per bucket
	head    uint32   // MRU
	tail    uint32   // LRU, eviction candidate
	free    uint32   // free-list head (linked via next)
	size    int

	now     func() time.Time
	metrics Metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics attaches a metrics collector.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// withClock overrides the time source. Test hook.
func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache holding at most capacity entries. Entries written
// without an explicit TTL expire after defaultTTL.
func New(capacity int, defaultTTL time.Duration, opts ...Option) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		slab:       make([]entry, capacity),
		buckets:    make([]uint32, 2*capacity+1),
		head:       noIndex,
		tail:       noIndex,
		now:        time.Now,
	}
	for i := range c.buckets {
		c.buckets[i] = noIndex
	}
	// Chain all slots onto the free list.
	for i := range c.slab {
		c.slab[i].next = uint32(i) + 1
		c.slab[i].prev = noIndex
		c.slab[i].bucketNext = noIndex
	}
	c.slab[capacity-1].next = noIndex
	c.free = 0
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fnv1a hashes a key with 32-bit FNV-1a.
func fnv1a(key string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return h
}

func (c *Cache) bucketOf(key string) uint32 {
	return fnv1a(key) % uint32(len(c.buckets))
}

// Get looks up key and returns a reference to its value, or nil on a miss.
// A hit promotes the entry to most-recently-used, so the write lock is taken.
// Expired entries are removed lazily and reported as misses.
//
// The caller must Release the returned value once the bytes have been used.
func (c *Cache) Get(key string) *Value {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.findLocked(key)
	if idx == noIndex {
		if c.metrics != nil {
			c.metrics.RecordMiss()
		}
		return nil
	}
	e := &c.slab[idx]
	if c.now().After(e.expiresAt) {
		c.removeLocked(idx)
		if c.metrics != nil {
			c.metrics.RecordMiss()
			c.metrics.RecordSize(c.size)
		}
		return nil
	}

	c.moveToFrontLocked(idx)
	e.value.retain()
	if c.metrics != nil {
		c.metrics.RecordHit()
	}
	return e.value
}

// Set stores value under key with the given TTL (0 means the default TTL).
// An existing entry is replaced and its expiry refreshed. At capacity the
// least-recently-used entry is evicted first. The value bytes are copied.
//
// Returns false when the key is empty or exceeds MaxKeyLen.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) bool {
	if key == "" || len(key) > MaxKeyLen {
		return false
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(ttl)

	if idx := c.findLocked(key); idx != noIndex {
		e := &c.slab[idx]
		e.value.release()
		e.value = newValue(value)
		e.expiresAt = expires
		c.moveToFrontLocked(idx)
		return true
	}

	if c.size == c.capacity {
		c.removeLocked(c.tail)
		if c.metrics != nil {
			c.metrics.RecordEviction()
		}
	}

	idx := c.free
	c.free = c.slab[idx].next

	e := &c.slab[idx]
	e.key = key
	e.value = newValue(value)
	e.expiresAt = expires

	b := c.bucketOf(key)
	e.bucketNext = c.buckets[b]
	c.buckets[b] = idx

	// Push onto the recency list head.
	e.prev = noIndex
	e.next = c.head
	if c.head != noIndex {
		c.slab[c.head].prev = idx
	}
	c.head = idx
	if c.tail == noIndex {
		c.tail = idx
	}

	c.size++
	if c.metrics != nil {
		c.metrics.RecordSize(c.size)
	}
	return true
}

// Invalidate removes key if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.findLocked(key); idx != noIndex {
		c.removeLocked(idx)
		if c.metrics != nil {
			c.metrics.RecordSize(c.size)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.head != noIndex {
		c.removeLocked(c.head)
	}
	if c.metrics != nil {
		c.metrics.RecordSize(0)
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// Capacity returns the configured maximum entry count.
func (c *Cache) Capacity() int {
	return c.capacity
}

// findLocked returns the slab index for key, or noIndex.
func (c *Cache) findLocked(key string) uint32 {
	for idx := c.buckets[c.bucketOf(key)]; idx != noIndex; idx = c.slab[idx].bucketNext {
		if c.slab[idx].key == key {
			return idx
		}
	}
	return noIndex
}

// removeLocked unlinks slot idx from the bucket chain and the recency list,
// releases the cache's value reference and returns the slot to the free list.
func (c *Cache) removeLocked(idx uint32) {
	e := &c.slab[idx]

	// Bucket chain.
	b := c.bucketOf(e.key)
	if c.buckets[b] == idx {
		c.buckets[b] = e.bucketNext
	} else {
		for cur := c.buckets[b]; cur != noIndex; cur = c.slab[cur].bucketNext {
			if c.slab[cur].bucketNext == idx {
				c.slab[cur].bucketNext = e.bucketNext
				break
			}
		}
	}

	// Recency list.
	if e.prev != noIndex {
		c.slab[e.prev].next = e.next
	} else {
		c.head = e.next
	}
	if e.next != noIndex {
		c.slab[e.next].prev = e.prev
	} else {
		c.tail = e.prev
	}

	e.value.release()
	e.key = ""
	e.value = nil
	e.prev = noIndex
	e.bucketNext = noIndex

	e.next = c.free
	c.free = idx
	c.size--
}

// moveToFrontLocked promotes slot idx to most-recently-used.
func (c *Cache) moveToFrontLocked(idx uint32) {
	if c.head == idx {
		return
	}
	e := &c.slab[idx]

	if e.prev != noIndex {
		c.slab[e.prev].next = e.next
	}
	if e.next != noIndex {
		c.slab[e.next].prev = e.prev
	}
	if c.tail == idx {
		c.tail = e.prev
	}

	e.prev = noIndex
	e.next = c.head
	if c.head != noIndex {
		c.slab[c.head].prev = idx
	}
	c.head = idx
}
