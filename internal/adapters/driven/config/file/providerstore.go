// Package file provides TOML-backed configuration adapters: the
// provider registry, built from an embedded default file merged with an
// optional user override.
package file

import (
	_ "embed"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

//go:embed providers.toml
var defaultProviders []byte

// Ensure ProviderStore implements the interface.
var _ driven.ProviderStore = (*ProviderStore)(nil)

// ProviderStore is a TOML-backed provider registry: the embedded
// defaults merged with an optional user file, user entries winning on
// id collisions.
type ProviderStore struct {
	mu        sync.RWMutex
	providers map[string]domain.Provider
}

// providerFile is the TOML shape of a registry file.
type providerFile struct {
	Providers []providerEntry `toml:"providers"`
}

type providerEntry struct {
	ID              string `toml:"id"`
	Name            string `toml:"name"`
	URL             string `toml:"url"`
	AgencyID        string `toml:"agency_id"`
	DataContentType string `toml:"data_content_type"`
}

// NewProviderStore loads the registry. If configDir is empty, the user
// override is looked up at ~/.sdmx/providers.toml; a missing override
// file is not an error.
func NewProviderStore(configDir string) (*ProviderStore, error) {
	s := &ProviderStore{providers: make(map[string]domain.Provider)}
	if err := s.merge(defaultProviders); err != nil {
		return nil, errors.Wrap(err, "loading built-in provider registry")
	}

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "getting home directory")
		}
		configDir = filepath.Join(home, ".sdmx")
	}
	userFile := filepath.Join(configDir, "providers.toml")
	data, err := os.ReadFile(userFile)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "reading %s", userFile)
	}
	if err := s.merge(data); err != nil {
		return nil, errors.Wrapf(err, "loading %s", userFile)
	}
	return s, nil
}

// merge parses a registry file and overlays its entries.
func (s *ProviderStore) merge(data []byte) error {
	var f providerFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range f.Providers {
		p := domain.Provider{
			ID:              e.ID,
			Name:            e.Name,
			URL:             e.URL,
			AgencyID:        e.AgencyID,
			DataContentType: domain.DataContentType(e.DataContentType),
		}
		if p.DataContentType == "" {
			p.DataContentType = domain.ContentSDMXML
		}
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "provider %q", e.ID)
		}
		s.providers[p.ID] = p
	}
	return nil
}

// Get returns the provider with the given id.
func (s *ProviderStore) Get(id string) (domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	if !ok {
		return domain.Provider{}, errors.Wrapf(domain.ErrProviderNotFound, "provider %q", id)
	}
	return p, nil
}

// List returns all configured providers sorted by id.
func (s *ProviderStore) List() []domain.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
