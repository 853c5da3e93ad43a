package asynqx

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

// ErrAlreadyWatching 同一个任务已经有 watch 在排队或执行
var ErrAlreadyWatching = errors.New("task is already being watched")

// Enqueuer 入队接口（便于 handler 测试替换）
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client 封装 asynq.Client，负责 watch 任务入队
type Client struct {
	enq Enqueuer
}

// NewRedisConnOpt 仅接受 URI（例如 redis://localhost:6379/6）
func NewRedisConnOpt(redisURI string) (asynq.RedisConnOpt, error) {
	return asynq.ParseRedisURI(redisURI)
}

// NewClient 基于 Redis URI 创建客户端
func NewClient(redisURI string) (*Client, *asynq.Client, error) {
	opt, err := NewRedisConnOpt(redisURI)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis uri: %w", err)
	}
	ac := asynq.NewClient(opt)
	return &Client{enq: ac}, ac, nil
}

// NewClientWithEnqueuer 使用已有的入队实现
func NewClientWithEnqueuer(enq Enqueuer) *Client {
	return &Client{enq: enq}
}

// EnqueueWatch 入队一个 watch 任务；同一 task_id 重复入队返回 ErrAlreadyWatching
func (c *Client) EnqueueWatch(ctx context.Context, p WatchPayload) (*asynq.TaskInfo, error) {
	t, err := NewWatchTask(p)
	if err != nil {
		return nil, err
	}
	info, err := c.enq.EnqueueContext(ctx, t, WatchOptions(p)...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil, ErrAlreadyWatching
		}
		return nil, fmt.Errorf("enqueue watch: %w", err)
	}
	return info, nil
}

// NewInspector 创建 asynq Inspector，用于查询 watch 队列和任务状态
func NewInspector(redisURI string) (*asynq.Inspector, error) {
	opt, err := NewRedisConnOpt(redisURI)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}
	return asynq.NewInspector(opt), nil
}
