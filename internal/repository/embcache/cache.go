package embcache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxSize is the cache capacity used when none is configured.
const DefaultMaxSize = 1000

// Stats is a point-in-time view of the cache occupancy.
type Stats struct {
	Size    int
	MaxSize int
}

// Cache is a bounded in-memory map from exact text to embedding.
// Eviction is FIFO by first insertion: reads and re-inserts do not refresh an entry.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string][]float32
	// ring holds keys in insertion order; head is the oldest one.
	ring  []string
	head  int
	count int

	cacheTotal *prometheus.CounterVec
	evictions  prometheus.Counter
	size       prometheus.Gauge
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics wires hit/miss, eviction and size metrics. Any of them may be nil.
func WithMetrics(cacheTotal *prometheus.CounterVec, evictions prometheus.Counter, size prometheus.Gauge) Option {
	return func(c *Cache) {
		c.cacheTotal = cacheTotal
		c.evictions = evictions
		c.size = size
	}
}

// New creates a cache holding at most maxSize entries (DefaultMaxSize if maxSize <= 0).
func New(maxSize int, opts ...Option) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	c := &Cache{
		maxSize: maxSize,
		entries: make(map[string][]float32, maxSize),
		ring:    make([]string, maxSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached embedding for text.
func (c *Cache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	vec, ok := c.entries[text]
	c.mu.Unlock()

	if !ok {
		c.inc("miss")
		return nil, false
	}
	c.inc("hit")
	return clone(vec), true
}

// Put stores a copy of vec under text. An existing key keeps its position in the eviction order.
func (c *Cache) Put(text string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[text]; ok {
		c.entries[text] = clone(vec)
		return
	}

	if c.count == c.maxSize {
		oldest := c.ring[c.head]
		delete(c.entries, oldest)
		c.ring[c.head] = text
		c.head = (c.head + 1) % c.maxSize
		if c.evictions != nil {
			c.evictions.Inc()
		}
	} else {
		c.ring[(c.head+c.count)%c.maxSize] = text
		c.count++
	}
	c.entries[text] = clone(vec)
	c.setSize()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]float32, c.maxSize)
	clear(c.ring)
	c.head = 0
	c.count = 0
	c.setSize()
}

// Stats returns the current size and the capacity.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: c.count, MaxSize: c.maxSize}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// setSize must be called with mu held.
func (c *Cache) setSize() {
	if c.size != nil {
		c.size.Set(float64(c.count))
	}
}

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
