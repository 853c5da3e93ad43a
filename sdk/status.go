package sdk

import (
	"encoding/json"

	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

// TaskStatus 上游任务状态，与网关内部使用同一个枚举
type TaskStatus = model.TaskStatus

// TaskSnapshot 任务详情快照，保留上游返回的原始 JSON
type TaskSnapshot = model.TaskSnapshot

const (
	TaskStatusCreated  = model.TaskStatusCreated
	TaskStatusRunning  = model.TaskStatusRunning
	TaskStatusPaused   = model.TaskStatusPaused
	TaskStatusFinished = model.TaskStatusFinished
	TaskStatusFailed   = model.TaskStatusFailed
	TaskStatusStopped  = model.TaskStatusStopped
)

// WaitOptions WaitForCompletion 的参数，即 waiter.Options
type WaitOptions = waiter.Options

// TimeoutError 等待超时错误，Last 为最后一次获取的任务详情
type TimeoutError = waiter.TimeoutError

// ErrTimeout 可用 errors.Is 判断等待超时
var ErrTimeout = waiter.ErrTimeout

// NewStepTracker 只把新出现的 step 交给 onStep，配合 WaitOptions.Observer 使用
func NewStepTracker(onStep func(step json.RawMessage)) *waiter.StepTracker {
	return waiter.NewStepTracker(onStep)
}
