// Package memory provides an in-memory message cache, primarily for
// tests and for runs where persistence is unwanted.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.MessageCache = (*Cache)(nil)

// Cache is a map-backed message cache safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]driven.CachedMessage
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]driven.CachedMessage)}
}

// Get returns the cached message for the key.
func (c *Cache) Get(_ context.Context, key string) (*driven.CachedMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msg, ok := c.entries[key]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "message %q", key)
	}
	out := msg
	out.Body = append([]byte(nil), msg.Body...)
	return &out, nil
}

// Put stores a message, replacing any existing entry for the key.
func (c *Cache) Put(_ context.Context, msg driven.CachedMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.FetchedAt.IsZero() {
		msg.FetchedAt = time.Now()
	}
	msg.Body = append([]byte(nil), msg.Body...)
	c.entries[msg.Key] = msg
	return nil
}

// Delete removes the entry for the key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close releases resources; a no-op for the memory cache.
func (c *Cache) Close() error {
	return nil
}
