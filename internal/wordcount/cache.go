package wordcount

import (
	"crypto/sha256"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/conneroisu/prosemark/internal/interfaces"
)

// CachingCounter memoizes another WordCounter by content digest. Counters
// are pure, so a cached count is indistinguishable from a fresh one; the
// cache only pays off when the same text is counted repeatedly, as in watch
// mode.
type CachingCounter struct {
	next   interfaces.WordCounter
	cache  *lru.Cache[[sha256.Size]byte, int]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachingCounter wraps next with an LRU of size entries. A size of zero
// disables caching and every call goes straight to next.
func NewCachingCounter(next interfaces.WordCounter, size int) (*CachingCounter, error) {
	if next == nil {
		return nil, fmt.Errorf("caching counter: nil word counter")
	}
	if size < 0 {
		return nil, fmt.Errorf("caching counter: negative cache size %d", size)
	}

	c := &CachingCounter{next: next}
	if size == 0 {
		return c, nil
	}

	cache, err := lru.New[[sha256.Size]byte, int](size)
	if err != nil {
		return nil, fmt.Errorf("caching counter: %w", err)
	}
	c.cache = cache

	return c, nil
}

// CountWords implements interfaces.WordCounter.
func (c *CachingCounter) CountWords(text string) int {
	if c.cache == nil {
		return c.next.CountWords(text)
	}

	key := sha256.Sum256([]byte(text))
	if n, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return n
	}

	c.misses.Add(1)
	n := c.next.CountWords(text)
	c.cache.Add(key, n)

	return n
}

// CacheStats is a snapshot of cache effectiveness.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// HitRate returns hits as a fraction of lookups.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns the current cache counters.
func (c *CachingCounter) Stats() CacheStats {
	stats := CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	if c.cache != nil {
		stats.Entries = c.cache.Len()
	}
	return stats
}

// Purge drops every cached entry and resets the counters.
func (c *CachingCounter) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
	c.hits.Store(0)
	c.misses.Store(0)
}
