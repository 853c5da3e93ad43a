package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Outcome 网关观察到的等待结果
const (
	OutcomePending   = "pending"   // 已创建，尚未等待
	OutcomeCompleted = "completed" // 观察到终态
	OutcomeTimeout   = "timeout"   // 等待超时
	OutcomeError     = "error"     // 上游调用失败
)

// TaskRecord 网关侧记录的任务历史（只是观察记录，任务本身归上游所有）
type TaskRecord struct {
	TaskID       string          `json:"task_id"`
	Instructions string          `json:"instructions,omitempty"`
	Status       string          `json:"status"`
	Outcome      string          `json:"outcome"`
	Output       string          `json:"output,omitempty"`
	Error        string          `json:"error,omitempty"`
	Snapshot     json.RawMessage `json:"snapshot,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}

// OutcomeUpdate 一次等待结束后的结果
type OutcomeUpdate struct {
	TaskID   string
	Status   string
	Outcome  string
	Output   string
	Error    string
	Snapshot json.RawMessage
	Terminal bool
}

// ListTasksFilter 任务历史查询过滤条件
type ListTasksFilter struct {
	Status  string
	Outcome string
	Limit   int
	Offset  int
}

// TaskRepository 任务历史仓储接口
type TaskRepository interface {
	// RecordCreated 记录通过网关创建的任务
	RecordCreated(ctx context.Context, taskID, instructions string) error

	// RecordOutcome 记录等待结果（任务可能不是通过网关创建的，不存在则插入）
	RecordOutcome(ctx context.Context, u OutcomeUpdate) error

	// GetTask 根据 task_id 获取历史记录
	GetTask(ctx context.Context, taskID string) (*TaskRecord, error)

	// ListTasks 查询历史列表（支持分页和过滤）
	ListTasks(ctx context.Context, filter ListTasksFilter) ([]TaskRecord, error)

	// CountTasks 统计总数
	CountTasks(ctx context.Context, filter ListTasksFilter) (int, error)
}
