package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	c := NewMemoryCache(2, time.Minute)
	c.now = func() time.Time { return now }

	_, err := c.GetTerminal(ctx, "t1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.PutTerminal(ctx, &model.TaskSnapshot{ID: "t1", Status: model.TaskStatusRunning}))
	assert.Equal(t, 0, c.Len())

	done := &model.TaskSnapshot{ID: "t1", Status: model.TaskStatusFinished}
	require.NoError(t, c.PutTerminal(ctx, done))
	got, err := c.GetTerminal(ctx, "t1")
	require.NoError(t, err)
	assert.Same(t, done, got)

	now = now.Add(time.Minute)
	_, err = c.GetTerminal(ctx, "t1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Evicts(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, 0)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.PutTerminal(ctx, &model.TaskSnapshot{ID: id, Status: model.TaskStatusStopped}))
	}
	assert.Equal(t, 2, c.Len())

	_, err := c.GetTerminal(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
