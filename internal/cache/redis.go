package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/azhengyongqin/browser-use-gateway/internal/metrics"
	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
)

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// SnapshotCache 终态快照缓存。
// 只缓存 finished/failed/stopped 的快照：终态不会再变化，缓存永远不会过期失效。
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache 创建 Redis 缓存客户端
func NewSnapshotCache(redisURL string, ttl time.Duration) (*SnapshotCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewSnapshotCacheWithClient(client, ttl), nil
}

// NewSnapshotCacheWithClient 使用已有的 redis client
func NewSnapshotCacheWithClient(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Close 关闭 Redis 连接
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}

// Ping 用于就绪检查
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetTerminal 读取缓存的终态快照；未命中返回 ErrCacheMiss
func (c *SnapshotCache) GetTerminal(ctx context.Context, taskID string) (*model.TaskSnapshot, error) {
	data, err := c.client.Get(ctx, CacheKey("task", taskID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheLookup(false)
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get cache: %w", err)
	}

	var snap model.TaskSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal cache data: %w", err)
	}
	metrics.RecordCacheLookup(true)
	return &snap, nil
}

// PutTerminal 写入终态快照；非终态快照直接忽略
func (c *SnapshotCache) PutTerminal(ctx context.Context, snap *model.TaskSnapshot) error {
	if !snap.IsTerminal() || snap.ID == "" {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return c.client.Set(ctx, CacheKey("task", snap.ID), data, c.ttl).Err()
}

// Delete 删除缓存
func (c *SnapshotCache) Delete(ctx context.Context, taskIDs ...string) error {
	keys := make([]string, 0, len(taskIDs))
	for _, id := range taskIDs {
		keys = append(keys, CacheKey("task", id))
	}
	return c.client.Del(ctx, keys...).Err()
}

// CacheKey 生成缓存 key
func CacheKey(prefix string, parts ...string) string {
	key := "bugateway:" + prefix
	for _, part := range parts {
		key += ":" + part
	}
	return key
}
