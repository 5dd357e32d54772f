// Package cache keeps computed report view-models in memory, grouped by the
// user they belong to so that one write can drop everything derived from
// that user's rows.
package cache

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is a TTL cache of report results keyed per user.
//
// Every user has a generation that Invalidate bumps. Callers read it with
// Generation before computing a value and hand it back to Set, which drops
// the value if the user's rows changed in between.
type Cache struct {
	store *ristretto.Cache[string, any]
	ttl   time.Duration

	mu   sync.Mutex
	keys map[string]map[string]struct{} // user id -> cache keys
	gens map[string]uint64
}

// New creates a cache whose entries live for ttl.
func New(ttl time.Duration) (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     1000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &Cache{
		store: store,
		ttl:   ttl,
		keys:  make(map[string]map[string]struct{}),
		gens:  make(map[string]uint64),
	}, nil
}

func scoped(userID, key string) string {
	return userID + ":" + key
}

// Get returns the value stored under key for userID.
func (c *Cache) Get(userID, key string) (any, bool) {
	return c.store.Get(scoped(userID, key))
}

// Generation returns userID's current generation.
func (c *Cache) Generation(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID]
}

// Set stores value under key for userID unless userID was invalidated after
// gen was read. It reports whether the value was accepted. Sets are applied
// asynchronously; call Wait to make them visible immediately.
func (c *Cache) Set(userID, key string, gen uint64, value any) bool {
	k := scoped(userID, key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return false
	}
	if c.keys[userID] == nil {
		c.keys[userID] = make(map[string]struct{})
	}
	c.keys[userID][k] = struct{}{}

	// under mu so a concurrent Invalidate is ordered after this write
	c.store.SetWithTTL(k, value, 1, c.ttl)
	return true
}

// Invalidate drops every entry stored for userID and bumps its generation.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[userID]++
	for k := range c.keys[userID] {
		c.store.Del(k)
	}
	delete(c.keys, userID)
}

// Wait blocks until buffered writes are applied.
func (c *Cache) Wait() {
	c.store.Wait()
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.store.Close()
}
