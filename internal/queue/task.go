package asynqx

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeWatchTask 后台等待 Browser Use 任务结束
	TypeWatchTask = "browseruse:watch"

	// QueueWatch watch 任务所在队列
	QueueWatch = "watch"
)

// WatchPayload watch 任务的 payload
type WatchPayload struct {
	TaskID              string `json:"task_id"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
	TimeoutSeconds      int    `json:"timeout_seconds"`
}

func (p WatchPayload) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalSeconds) * time.Second
}

func (p WatchPayload) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// NewWatchTask 构造 asynq task
func NewWatchTask(p WatchPayload) (*asynq.Task, error) {
	if p.TaskID == "" {
		return nil, errors.New("task_id 不能为空")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal watch payload: %w", err)
	}
	return asynq.NewTask(TypeWatchTask, b), nil
}

// ParseWatchPayload 解析 watch payload
func ParseWatchPayload(t *asynq.Task) (WatchPayload, error) {
	var p WatchPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal watch payload: %w", err)
	}
	if p.TaskID == "" {
		return p, errors.New("watch payload missing task_id")
	}
	return p, nil
}

// WatchTaskID watch 任务在 asynq 中的 ID
func WatchTaskID(taskID string) string {
	return "watch:" + taskID
}

// WatchOptions 入队参数：
// - 以 task_id 作为 asynq 任务 ID，同一任务只允许一个 watch
// - 执行超时 = 等待超时 + 1 分钟余量
// - 等待本身不重试（超时或上游错误直接结束）
func WatchOptions(p WatchPayload) []asynq.Option {
	opts := []asynq.Option{
		asynq.Queue(QueueWatch),
		asynq.TaskID(WatchTaskID(p.TaskID)),
		asynq.MaxRetry(0),
		asynq.Retention(24 * time.Hour),
	}
	if p.TimeoutSeconds > 0 {
		opts = append(opts, asynq.Timeout(p.Timeout()+time.Minute))
	}
	return opts
}
