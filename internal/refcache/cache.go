// Package refcache holds, per conversation, the record order of the most
// recent listing shown to the user, so follow-up commands can say
// "apagar #1" or reference a short id safely. Entries expire after a
// fixed TTL and are evicted lazily on access.
package refcache

import (
	"strings"
	"sync"
	"time"

	"github.com/granabot/granabot/internal/model"
)

// DefaultTTL bounds how long a listing stays referenceable.
const DefaultTTL = 5 * time.Minute

type entry struct {
	createdAt time.Time
	ids       []string
}

// Cache is a per-conversation listing cache. It is safe for concurrent
// use; entries for distinct conversations never contend beyond the map
// lock and are never merged.
type Cache struct {
	now     func() time.Time
	entries map[string]entry
	ttl     time.Duration
	mu      sync.RWMutex
}

// New creates a cache with the given TTL. A non-positive TTL selects
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put unconditionally replaces the conversation's entry with the ids in
// display order, even if the previous entry was still valid.
func (c *Cache) Put(conversationID string, ids []string) {
	ordered := make([]string, len(ids))
	for i, id := range ids {
		ordered[i] = strings.ToLower(id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[conversationID] = entry{createdAt: c.now(), ids: ordered}
}

// Resolve maps a reference to a durable record identifier. A full id
// resolves directly without touching the cache. Ordinal and short-id
// forms require a live entry for the conversation: the cache is the only
// search space for a short id, so stale or foreign records can never be
// hit. Every call re-checks the entry age.
func (c *Cache) Resolve(conversationID string, ref model.Reference) (string, bool) {
	if ref.Kind == model.RefFullID {
		return strings.ToLower(ref.Hex), true
	}

	ids, ok := c.lookup(conversationID)
	if !ok {
		return "", false
	}

	switch ref.Kind {
	case model.RefOrdinal:
		if ref.Ordinal >= 1 && ref.Ordinal <= len(ids) {
			return ids[ref.Ordinal-1], true
		}
	case model.RefShortID:
		suffix := strings.ToLower(ref.Hex)
		for _, id := range ids {
			if strings.HasSuffix(id, suffix) {
				return id, true
			}
		}
	}
	return "", false
}

// lookup returns the live id list for a conversation, discarding an
// expired entry as if it were never populated.
func (c *Cache) lookup(conversationID string) ([]string, bool) {
	c.mu.RLock()
	e, ok := c.entries[conversationID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.createdAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: a fresh Put may have raced in.
		if current, still := c.entries[conversationID]; still && current.createdAt.Equal(e.createdAt) {
			delete(c.entries, conversationID)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.ids, true
}
