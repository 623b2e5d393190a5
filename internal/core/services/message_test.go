package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

// stubReader records which reader was picked.
type stubReader struct {
	types    []string
	exts     []string
	priority int
	name     string
}

func (r *stubReader) SupportedContentTypes() []string { return r.types }
func (r *stubReader) SupportedExtensions() []string   { return r.exts }
func (r *stubReader) Priority() int                   { return r.priority }

func (r *stubReader) Read(_ context.Context, _ *driven.RawMessage, _ driven.ReadOptions) (*domain.Message, error) {
	msg := &domain.Message{}
	msg.Header.ID = r.name
	return msg, nil
}

func newStubService() *MessageService {
	xml := &stubReader{
		name:     "xml",
		types:    []string{"application/xml", "application/vnd.sdmx.genericdata+xml"},
		exts:     []string{".xml"},
		priority: 50,
	}
	json := &stubReader{
		name:     "json",
		types:    []string{"application/json"},
		exts:     []string{".json"},
		priority: 40,
	}
	return NewMessageService(xml, json)
}

func TestMessageService_SelectsByContentType(t *testing.T) {
	svc := newStubService()

	msg, err := svc.Parse(context.Background(), &driven.RawMessage{
		ContentType: "application/vnd.sdmx.genericdata+xml;version=2.1",
		Body:        []byte("payload"),
	}, driven.ReadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "xml", msg.Header.ID)
}

func TestMessageService_FallsBackToExtension(t *testing.T) {
	svc := newStubService()

	msg, err := svc.Parse(context.Background(), &driven.RawMessage{
		URL:         "/data/exr.json",
		ContentType: "application/octet-stream",
		Body:        []byte("payload"),
	}, driven.ReadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "json", msg.Header.ID)
}

func TestMessageService_SniffsPayload(t *testing.T) {
	svc := newStubService()

	msg, err := svc.Parse(context.Background(), &driven.RawMessage{
		ContentType: "text/plain",
		Body:        []byte(`  {"data": {}}`),
	}, driven.ReadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "json", msg.Header.ID)
}

func TestMessageService_NoReaderMatches(t *testing.T) {
	svc := newStubService()

	_, err := svc.Parse(context.Background(), &driven.RawMessage{
		ContentType: "text/plain",
		Body:        []byte("csv,data"),
	}, driven.ReadOptions{})

	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestMessageService_EmptyBody(t *testing.T) {
	svc := newStubService()

	_, err := svc.Parse(context.Background(), &driven.RawMessage{}, driven.ReadOptions{})

	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestMessageService_ReadersInPriorityOrder(t *testing.T) {
	svc := newStubService()

	readers := svc.Readers()
	require.Len(t, readers, 2)
	assert.Equal(t, 50, readers[0].Priority())
	assert.Equal(t, 40, readers[1].Priority())
}
