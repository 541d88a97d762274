package caching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	ok, err := c.Contains(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, ok)
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	assert.NoError(t, c.Remove(ctx, "k"))
	ok, _ = c.Contains(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_Expire(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), 30*time.Millisecond))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	time.Sleep(50 * time.Millisecond)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	ok, err := c.Contains(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}
