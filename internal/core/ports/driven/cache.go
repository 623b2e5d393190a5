package driven

import (
	"context"
	"time"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// CachedMessage is one cached wire message. Key is the request URL; the
// body is kept verbatim so a cache hit replays through the same reader
// path as a fresh fetch.
type CachedMessage struct {
	Key         string
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// MessageCache stores fetched wire messages keyed by request URL.
// Implementations carry no concurrent-access contract; callers
// serialise access externally.
type MessageCache interface {
	// Get returns the cached message for the key, or
	// domain.ErrNotFound.
	Get(ctx context.Context, key string) (*CachedMessage, error)

	// Put stores a message, replacing any existing entry for the key.
	Put(ctx context.Context, msg CachedMessage) error

	// Delete removes the entry for the key. Missing keys are not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// ProviderStore is the configured provider registry.
type ProviderStore interface {
	// Get returns the provider with the given id, or
	// domain.ErrProviderNotFound.
	Get(id string) (domain.Provider, error)

	// List returns all configured providers sorted by id.
	List() []domain.Provider
}
