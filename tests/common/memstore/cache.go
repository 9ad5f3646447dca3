//go:build unit

package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"booking-engine/internal/domain/slot"
	"booking-engine/internal/usecase/shared"
)

// Cache is an in-memory SlotCache. FailInvalidations makes that many
// InvalidateAll calls fail before one succeeds.
type Cache struct {
	mu                sync.Mutex
	entries           map[string][]slot.TimeSlot
	generations       map[string]int64
	FailInvalidations int
	Invalidations     int
	Puts              int
}

var _ shared.SlotCache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{entries: map[string][]slot.TimeSlot{}, generations: map[string]int64{}}
}

func (c *Cache) Generation(_ context.Context, slug string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[slug], true
}

func (c *Cache) Get(_ context.Context, key shared.SlotKey) ([]slot.TimeSlot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key.String()]
	return v, ok
}

func (c *Cache) Put(_ context.Context, key shared.SlotKey, slots []slot.TimeSlot, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Puts++
	c.entries[key.String()] = slots
}

func (c *Cache) InvalidateAll(_ context.Context, slug string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidations++
	if c.FailInvalidations > 0 {
		c.FailInvalidations--
		return errCacheDown
	}
	c.generations[slug]++
	prefix := strings.TrimSuffix(shared.SlotKeyPattern(slug), "*")
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Has reports whether key holds an entry, whatever its generation.
func (c *Cache) Has(key shared.SlotKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key.String()]
	return ok
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type cacheError string

func (e cacheError) Error() string { return string(e) }

const errCacheDown = cacheError("cache unavailable")
