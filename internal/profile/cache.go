package profile

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

// CacheTTL is how long a profile read stays valid.
const CacheTTL = 30 * time.Second

type cacheEntry struct {
	user       database.User
	insertedAt time.Time
}

// Cache holds recently read profiles keyed by owner, each with an explicit
// insertion timestamp so expiry is a pure check against the clock.
type Cache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]cacheEntry
	ttl     time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[uuid.UUID]cacheEntry),
		ttl:     ttl,
	}
}

// Fresh reports whether an entry inserted at insertedAt is still valid at
// now.
func Fresh(insertedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(insertedAt) < ttl
}

// Get returns the cached profile if it has not expired.
func (c *Cache) Get(userID uuid.UUID, now time.Time) (database.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok || !Fresh(entry.insertedAt, now, c.ttl) {
		return database.User{}, false
	}
	return entry.user, true
}

// Put stores a profile with the given insertion time.
func (c *Cache) Put(user database.User, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.ID] = cacheEntry{user: user, insertedAt: now}
}

// Invalidate drops a cached profile. Called on every profile update.
func (c *Cache) Invalidate(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
