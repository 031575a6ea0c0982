package apiclient

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProductsCacheTTL is how long a fetched product list is served from memory.
const ProductsCacheTTL = 5 * time.Minute

const productsCacheKey = "products"

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_apiclient_cache_requests_total",
		Help: "Product cache lookups by result (hit, miss, bypass)",
	},
	[]string{"key", "result"},
)

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// cache is a map with expiry checked on read. Entries are only replaced,
// never swept.
type cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[string]cacheEntry)}
}

func (c *cache) get(key string, now time.Time, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || now.Sub(e.fetchedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

func (c *cache) set(key string, value any, now time.Time) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, fetchedAt: now}
	c.mu.Unlock()
}

func (c *cache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
