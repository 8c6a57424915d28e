package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCopiesData(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, m.SaveSnapshot(ctx, PostsKey, buf))
	buf[0] = 'z'
	got, err := m.LoadSnapshot(ctx, PostsKey)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	_, err = m.LoadSnapshot(ctx, StoriesKey)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
