package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "bugateway:task", CacheKey("task"))
	assert.Equal(t, "bugateway:task:abc", CacheKey("task", "abc"))
	assert.Equal(t, "bugateway:task:a:b", CacheKey("task", "a", "b"))
}

// 非终态快照不会触达 Redis，因此无需真实连接
func TestPutTerminal_SkipsNonTerminal(t *testing.T) {
	c := NewSnapshotCacheWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0)
	defer c.Close()

	for _, s := range []*model.TaskSnapshot{
		nil,
		{ID: "t1", Status: model.TaskStatusRunning},
		{ID: "t1", Status: model.TaskStatusPaused},
		{Status: model.TaskStatusFinished},
	} {
		assert.NoError(t, c.PutTerminal(context.Background(), s))
	}
}
