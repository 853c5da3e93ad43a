package model

// TaskStatus Browser Use 任务状态枚举（由上游 API 定义，网关只读不写）。
// 约定：
// - created: 已创建，尚未开始执行
// - running: 浏览器正在执行
// - paused: 已暂停，可 resume
// - finished: 执行完成
// - failed: 执行失败
// - stopped: 被手动停止
type TaskStatus string

const (
	TaskStatusCreated  TaskStatus = "created"
	TaskStatusRunning  TaskStatus = "running"
	TaskStatusPaused   TaskStatus = "paused"
	TaskStatusFinished TaskStatus = "finished"
	TaskStatusFailed   TaskStatus = "failed"
	TaskStatusStopped  TaskStatus = "stopped"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusCreated, TaskStatusRunning, TaskStatusPaused,
		TaskStatusFinished, TaskStatusFailed, TaskStatusStopped:
		return true
	default:
		return false
	}
}

// IsTerminal 终态之后任务不会再有任何进展
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusFinished, TaskStatusFailed, TaskStatusStopped:
		return true
	default:
		return false
	}
}
