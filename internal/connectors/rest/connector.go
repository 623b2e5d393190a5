// Package rest fetches SDMX messages over HTTP: descriptor resolution
// against a provider endpoint, proactive rate limiting, and bounded
// polling of deferred-result links.
package rest

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
	"github.com/sdmx-tools/sdmx-cli/internal/logger"
)

// maxBodyBytes caps response reads; SDMX services signal larger results
// through a footer retrieval link instead.
const maxBodyBytes = 512 << 20

// Config holds connector settings.
type Config struct {
	// RequestsPerSecond is the sustained request rate; conservative
	// default of 2/s keeps well under public service quotas.
	RequestsPerSecond float64

	// BurstSize is the token bucket burst.
	BurstSize int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Accept overrides the Accept header; empty sends a format-driven
	// default.
	Accept string
}

// DefaultConfig returns the connector defaults.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2.0,
		BurstSize:         5,
		Timeout:           90 * time.Second,
	}
}

// Ensure Connector implements the interface.
var _ driven.Fetcher = (*Connector)(nil)

// Connector is an HTTP fetcher bound to one provider.
type Connector struct {
	provider domain.Provider
	client   *http.Client
	limiter  *rate.Limiter
	accept   string
}

// New creates a connector for the provider.
func New(provider domain.Provider, cfg Config) *Connector {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultConfig().BurstSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	accept := cfg.Accept
	if accept == "" {
		accept = acceptFor(provider.DataContentType)
	}
	return &Connector{
		provider: provider,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		accept:   accept,
	}
}

func acceptFor(content domain.DataContentType) string {
	if content == domain.ContentSDMXJSON {
		return "application/vnd.sdmx.data+json;version=1.0.0, application/json"
	}
	return "application/vnd.sdmx.structurespecificdata+xml;version=2.1, application/xml"
}

// Fetch resolves the descriptor against the provider endpoint.
func (c *Connector) Fetch(ctx context.Context, req driven.RequestDescriptor) (*driven.RawMessage, error) {
	url := strings.TrimRight(c.provider.URL, "/") + "/" + req.Encode()
	return c.get(ctx, url)
}

// Poll retrieves a deferred-result link: a bounded number of attempts
// at a fixed interval, succeeding on the first 2xx response.
func (c *Connector) Poll(ctx context.Context, url string, attempts int, interval time.Duration) (*driven.RawMessage, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			logger.Debug("polling deferred result", "url", url, "attempt", attempt+1)
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		msg, err := c.get(ctx, url)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		var re *domain.RetrievalError
		if !errors.As(err, &re) {
			return nil, err
		}
	}
	return nil, errors.Wrapf(lastErr, "deferred result not ready after %d attempts", attempts)
}

func (c *Connector) get(ctx context.Context, url string) (*driven.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "building request for %s", url)
	}
	httpReq.Header.Set("Accept", c.accept)

	logger.Debug("fetching", "url", url, "provider", c.provider.ID)
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "reading response from %s", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.RetrievalError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       truncate(string(body), 2048),
		}
	}

	return &driven.RawMessage{
		URL:         url,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
		Body:        body,
	}, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// mediaType strips content-type parameters.
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
