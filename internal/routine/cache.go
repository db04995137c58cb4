package routine

import (
	"fmt"
	"sync"
	"time"

	"github.com/myrjola/routinegen/internal/catalog"
)

// searchCache is a TTL-bounded read-through cache over catalog searches,
// keyed by the full query tuple. Reads never extend an entry's expiry: a
// stale entry is evicted on the read that finds it.
type searchCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	candidates []catalog.Candidate
	expiresAt  time.Time
}

// newSearchCache creates a cache. A non-positive ttl disables caching
// entirely; get always misses and put discards.
func newSearchCache(ttl time.Duration) *searchCache {
	return &searchCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *searchCache) get(key string) ([]catalog.Candidate, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.candidates, true
}

func (c *searchCache) put(key string, candidates []catalog.Candidate) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{candidates: candidates, expiresAt: c.now().Add(c.ttl)}
}

// cacheKey fingerprints the full query tuple, filters included, so two
// searches differing only in exclusions never share an entry.
func cacheKey(query string, k int, filters catalog.Filters) string {
	return fmt.Sprintf("%s|%d|%v|%v|%v", query, k,
		filters.TargetGroupAllowed, filters.FitnessFactorExcluded, filters.ExcludeIDs)
}
