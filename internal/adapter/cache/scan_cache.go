package cache

import (
	"strings"
	"sync"
	"time"

	"pfind/internal/domain"
)

// ScanCache memoizes override-path scan results so retyping a filter
// against the same directory does not re-walk it. Entries expire by TTL,
// by LRU pressure, and wholesale by generation bump when scan settings
// change.
type ScanCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	gen     uint64
}

type cacheEntry struct {
	result    *domain.ProjectScanResult
	pool      *domain.SearchPool
	timestamp time.Time
	gen       uint64
}

// NewScanCache creates a cache holding up to maxSize override scans.
func NewScanCache(maxSize int, ttl time.Duration) *ScanCache {
	if maxSize <= 0 {
		maxSize = 8
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScanCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(path string) string {
	return strings.ToLower(strings.TrimSpace(path))
}

// Get returns the cached scan and pool for a path, if still valid.
func (c *ScanCache) Get(path string) (*domain.ProjectScanResult, *domain.SearchPool, bool) {
	key := cacheKey(path)

	c.mu.RLock()
	entry, exists := c.entries[key]
	currentGen := c.gen
	c.mu.RUnlock()

	if !exists {
		return nil, nil, false
	}
	if time.Since(entry.timestamp) > c.ttl || entry.gen != currentGen {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return nil, nil, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.result, entry.pool, true
}

// Put stores a completed override scan.
func (c *ScanCache) Put(path string, result *domain.ProjectScanResult, pool *domain.SearchPool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(path)
	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{result: result, pool: pool, timestamp: time.Now(), gen: c.gen}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = &cacheEntry{result: result, pool: pool, timestamp: time.Now(), gen: c.gen}
	c.order = append(c.order, key)
}

// Invalidate drops every entry; scan settings changed.
func (c *ScanCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.gen++
}

// Size returns the number of live entries.
func (c *ScanCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ScanCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *ScanCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *ScanCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
