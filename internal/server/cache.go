package server

import (
	"sync"
	"time"
)

// HierarchyCache holds the last captured hierarchy document for a short TTL
// so that consecutive read tools do not re-walk the tree.
type HierarchyCache struct {
	mu  sync.Mutex
	doc string
	at  time.Time
	ttl time.Duration
	now func() time.Time
	// gen advances on every Invalidate so a fetch that straddles one is
	// not stored.
	gen uint64
}

// NewHierarchyCache creates a new cache. A ttl of 0 disables caching.
func NewHierarchyCache(ttl time.Duration) *HierarchyCache {
	return &HierarchyCache{ttl: ttl, now: time.Now}
}

// Get returns the cached document if within TTL, otherwise calls fetch.
// Empty documents are never cached.
func (c *HierarchyCache) Get(fetch func() string) string {
	if c.ttl == 0 {
		return fetch()
	}

	c.mu.Lock()
	if c.doc != "" && c.now().Sub(c.at) < c.ttl {
		doc := c.doc
		c.mu.Unlock()
		return doc
	}
	gen := c.gen
	c.mu.Unlock()

	doc := fetch()
	if doc == "" {
		return doc
	}

	c.mu.Lock()
	if c.gen == gen {
		c.doc, c.at = doc, c.now()
	}
	c.mu.Unlock()
	return doc
}

// Invalidate drops the cached document. Tools that change the screen call it.
func (c *HierarchyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = ""
	c.gen++
}
