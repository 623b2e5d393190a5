package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

func TestProviderStore_BuiltInDefaults(t *testing.T) {
	s, err := NewProviderStore(t.TempDir())
	require.NoError(t, err)

	ecb, err := s.Get("ECB")
	require.NoError(t, err)
	assert.Equal(t, "European Central Bank", ecb.Name)
	assert.Equal(t, domain.ContentSDMXML, ecb.DataContentType)
	assert.NotEmpty(t, ecb.URL)

	oecd, err := s.Get("OECD")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentSDMXJSON, oecd.DataContentType)
}

func TestProviderStore_UnknownProvider(t *testing.T) {
	s, err := NewProviderStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProviderNotFound))
}

func TestProviderStore_ListSortedByID(t *testing.T) {
	s, err := NewProviderStore(t.TempDir())
	require.NoError(t, err)

	providers := s.List()
	require.NotEmpty(t, providers)
	for i := 1; i < len(providers); i++ {
		assert.Less(t, providers[i-1].ID, providers[i].ID)
	}
}

func TestProviderStore_UserOverride(t *testing.T) {
	dir := t.TempDir()
	override := `
[[providers]]
id = "ECB"
name = "ECB (mirror)"
url = "https://mirror.example.org/service"
agency_id = "ECB"

[[providers]]
id = "LOCAL"
name = "Local test provider"
url = "http://localhost:8080"
agency_id = "TEST"
data_content_type = "sdmx-json"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.toml"), []byte(override), 0600))

	s, err := NewProviderStore(dir)
	require.NoError(t, err)

	ecb, err := s.Get("ECB")
	require.NoError(t, err)
	assert.Equal(t, "ECB (mirror)", ecb.Name)
	assert.Equal(t, "https://mirror.example.org/service", ecb.URL)
	// Omitted content type falls back to SDMX-ML.
	assert.Equal(t, domain.ContentSDMXML, ecb.DataContentType)

	local, err := s.Get("LOCAL")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentSDMXJSON, local.DataContentType)
}

func TestProviderStore_RejectsInvalidOverride(t *testing.T) {
	dir := t.TempDir()
	bad := `
[[providers]]
id = "BROKEN"
url = ""
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.toml"), []byte(bad), 0600))

	_, err := NewProviderStore(dir)
	assert.Error(t, err)
}
