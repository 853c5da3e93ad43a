package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/azhengyongqin/browser-use-gateway/internal/metrics"
	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
)

const defaultMemorySize = 1024

type memoryEntry struct {
	snap     *model.TaskSnapshot
	storedAt time.Time
}

// MemoryCache 进程内终态快照缓存，未配置 Redis 时使用
type MemoryCache struct {
	cache *lru.Cache[string, memoryEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCache 创建进程内缓存，size/ttl 非正数时使用默认值
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	// size 已保证为正数，lru.New 不会失败
	c, _ := lru.New[string, memoryEntry](size)
	return &MemoryCache{cache: c, ttl: ttl, now: time.Now}
}

// GetTerminal 读取终态快照；过期或未命中返回 ErrCacheMiss
func (m *MemoryCache) GetTerminal(_ context.Context, taskID string) (*model.TaskSnapshot, error) {
	e, ok := m.cache.Get(taskID)
	if !ok || m.now().Sub(e.storedAt) >= m.ttl {
		if ok {
			m.cache.Remove(taskID)
		}
		metrics.RecordCacheLookup(false)
		return nil, ErrCacheMiss
	}
	metrics.RecordCacheLookup(true)
	return e.snap, nil
}

// PutTerminal 写入终态快照；非终态快照直接忽略
func (m *MemoryCache) PutTerminal(_ context.Context, snap *model.TaskSnapshot) error {
	if !snap.IsTerminal() || snap.ID == "" {
		return nil
	}
	m.cache.Add(snap.ID, memoryEntry{snap: snap, storedAt: m.now()})
	return nil
}

// Len 当前缓存条目数
func (m *MemoryCache) Len() int {
	return m.cache.Len()
}
