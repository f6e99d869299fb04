package schedule

import (
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// DefaultTTL is how long a cached schedule counts as fresh
const DefaultTTL = 2 * time.Minute

// Entry is one cached schedule
type Entry struct {
	Games      []models.CanonicalGame
	CapturedAt time.Time
}

// Cache holds schedules keyed by league and calendar date. Stale entries are
// kept as a fallback for failed refreshes; nothing is evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache. now defaults to time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     now,
	}
}

// Key builds the cache key for a league and the calendar date of target in loc
func Key(league string, target time.Time, loc *time.Location) string {
	return league + ":" + target.In(loc).Format("2006-01-02")
}

// Get returns the entry for key and whether it is still fresh
func (c *Cache) Get(key string) (entry Entry, fresh bool, ok bool) {
	c.mu.RLock()
	entry, ok = c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return Entry{}, false, false
	}
	return entry, c.now().Sub(entry.CapturedAt) < c.ttl, true
}

// Put replaces the entry for key, stamped with the current time
func (c *Cache) Put(key string, games []models.CanonicalGame) Entry {
	entry := Entry{Games: games, CapturedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	return entry
}

// Len returns the number of cached keys
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
