package driven

import (
	"context"
	"net/url"
	"time"
)

// RequestDescriptor is a provider-relative resource path plus query
// parameters, produced by the pure query builder. The transport
// collaborator turns it into an actual request; headers, caching and
// provider quirks are its responsibility.
type RequestDescriptor struct {
	Path   string
	Params url.Values
}

// Encode renders the descriptor as a relative URL string.
func (r RequestDescriptor) Encode() string {
	if len(r.Params) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Params.Encode()
}

// Fetcher retrieves raw message bytes. The core's job ends at parsing
// whatever bytes it is given; non-2xx handling, deferred results and
// header quirks live behind this interface.
type Fetcher interface {
	// Fetch resolves the descriptor against the provider endpoint and
	// returns the response body with its content type.
	Fetch(ctx context.Context, req RequestDescriptor) (*RawMessage, error)

	// Poll retrieves a footer-provided deferred-result link on a fixed
	// schedule: bounded attempt count, fixed inter-attempt delay.
	Poll(ctx context.Context, url string, attempts int, interval time.Duration) (*RawMessage, error)

	// Close releases resources.
	Close() error
}
