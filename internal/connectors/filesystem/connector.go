// Package filesystem reads SDMX messages from local files and can
// watch a directory for newly arriving ones.
package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
	"github.com/sdmx-tools/sdmx-cli/internal/logger"
)

// contentTypes maps file extensions to wire content types.
var contentTypes = map[string]string{
	".xml":  "application/xml",
	".sdmx": "application/xml",
	".json": "application/json",
}

// Ensure Connector implements the interface.
var _ driven.Fetcher = (*Connector)(nil)

// Connector reads message files under a root directory.
type Connector struct {
	root string
}

// New creates a connector rooted at the given directory. An empty root
// resolves paths as given.
func New(root string) *Connector {
	return &Connector{root: root}
}

// Fetch reads the file named by the descriptor path, relative to the
// connector root.
func (c *Connector) Fetch(_ context.Context, req driven.RequestDescriptor) (*driven.RawMessage, error) {
	return c.read(c.resolve(req.Path))
}

// Poll re-reads a path until it exists: bounded attempts at a fixed
// interval, mirroring the deferred-result contract of remote fetchers.
func (c *Connector) Poll(ctx context.Context, path string, attempts int, interval time.Duration) (*driven.RawMessage, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		msg, err := c.read(c.resolve(path))
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	return nil, errors.Wrapf(lastErr, "file not available after %d attempts", attempts)
}

// Close releases resources; a no-op for the filesystem connector.
func (c *Connector) Close() error {
	return nil
}

func (c *Connector) resolve(path string) string {
	if c.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.root, path)
}

func (c *Connector) read(path string) (*driven.RawMessage, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(domain.ErrNotFound, "file %s", path)
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return &driven.RawMessage{
		URL:         path,
		ContentType: contentTypes[strings.ToLower(filepath.Ext(path))],
		Body:        body,
	}, nil
}

// Watch emits a message for every recognised file created or rewritten
// under the root until the context ends. The returned channel is closed
// on shutdown.
func (c *Connector) Watch(ctx context.Context) (<-chan *driven.RawMessage, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating watcher")
	}
	root := c.root
	if root == "" {
		root = "."
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watching %s", root)
	}

	out := make(chan *driven.RawMessage)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if _, recognised := contentTypes[strings.ToLower(filepath.Ext(event.Name))]; !recognised {
					continue
				}
				msg, err := c.read(event.Name)
				if err != nil {
					logger.Warn("reading watched file", "path", event.Name, "error", err)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "error", err)
			}
		}
	}()
	return out, nil
}
