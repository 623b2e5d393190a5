package memory

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

func TestCache_PutGetDelete(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, c.Put(ctx, driven.CachedMessage{Key: "k", Body: []byte("v")}))
	msg, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), msg.Body)
	assert.False(t, msg.FetchedAt.IsZero())
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(ctx, "k"))
	assert.Equal(t, 0, c.Len())
}

func TestCache_CopiesBodies(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	body := []byte("original")
	require.NoError(t, c.Put(ctx, driven.CachedMessage{Key: "k", Body: body}))
	body[0] = 'X'

	msg, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), msg.Body)

	msg.Body[0] = 'Y'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again.Body)
}
