package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

func TestConnector_Fetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exr.xml"), []byte("<payload/>"), 0600))

	c := New(dir)
	defer c.Close()

	msg, err := c.Fetch(context.Background(), driven.RequestDescriptor{Path: "exr.xml"})
	require.NoError(t, err)
	assert.Equal(t, "application/xml", msg.ContentType)
	assert.Equal(t, []byte("<payload/>"), msg.Body)
}

func TestConnector_FetchJSONContentType(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exr.json"), []byte("{}"), 0600))

	c := New(dir)
	msg, err := c.Fetch(context.Background(), driven.RequestDescriptor{Path: "exr.json"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
}

func TestConnector_FetchMissing(t *testing.T) {
	c := New(t.TempDir())
	_, err := c.Fetch(context.Background(), driven.RequestDescriptor{Path: "absent.xml"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestConnector_PollWaitsForFile(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	go func() {
		time.Sleep(20 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, "late.xml"), []byte("<payload/>"), 0600)
	}()

	msg, err := c.Poll(context.Background(), "late.xml", 50, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("<payload/>"), msg.Body)
}

func TestConnector_PollGivesUp(t *testing.T) {
	c := New(t.TempDir())
	_, err := c.Poll(context.Background(), "never.xml", 2, time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestConnector_Watch(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := c.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.xml"), []byte("<payload/>"), 0600))

	select {
	case msg := <-events:
		require.NotNil(t, msg)
		assert.Equal(t, []byte("<payload/>"), msg.Body)
		assert.Equal(t, "application/xml", msg.ContentType)
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event received")
	}
}

func TestConnector_WatchIgnoresUnrecognisedExtensions(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := c.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.xml"), []byte("<payload/>"), 0600))

	select {
	case msg := <-events:
		assert.Contains(t, msg.URL, "data.xml")
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event received")
	}
}
