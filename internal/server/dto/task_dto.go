package dto

import (
	"encoding/json"
	"time"
)

// RunTaskRequest 创建任务请求（仅用于文档）。
// 除 wait_for_completion 和 timeout 外，其余字段原样转发给 Browser Use API
type RunTaskRequest struct {
	Task                 string            `json:"task" binding:"required" example:"Open https://www.google.com and search for openai"`
	Secrets              map[string]string `json:"secrets,omitempty"`
	AllowedDomains       []string          `json:"allowed_domains,omitempty"`
	SaveBrowserData      bool              `json:"save_browser_data,omitempty"`
	StructuredOutputJSON string            `json:"structured_output_json,omitempty"`
	LLMModel             string            `json:"llm_model,omitempty" example:"gpt-4o"`
	UseAdblock           bool              `json:"use_adblock,omitempty"`
	UseProxy             bool              `json:"use_proxy,omitempty"`
	ProxyCountryCode     string            `json:"proxy_country_code,omitempty" example:"us"`
	HighlightElements    bool              `json:"highlight_elements,omitempty"`
	IncludedFileNames    []string          `json:"included_file_names,omitempty"`
	WaitForCompletion    bool              `json:"wait_for_completion" example:"false"`
	Timeout              int               `json:"timeout,omitempty" example:"300"` // 秒
}

// RunTaskResponse 创建任务响应（不等待）
type RunTaskResponse struct {
	TaskID  string `json:"task_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status  string `json:"status" example:"created"`
	Message string `json:"message" example:"任务创建成功，使用 /api/v1/task/{task_id} 跟踪进度"`
}

// CompletedResponse 等待到终态的响应，result 为上游任务详情原文
type CompletedResponse struct {
	TaskID string          `json:"task_id"`
	Status string          `json:"status" example:"completed"`
	Result json.RawMessage `json:"result" swaggertype:"object"`
}

// TimeoutResponse 等待超时（408），partial_result 为等待期间最后一次获取的任务详情，可能为 null
type TimeoutResponse struct {
	TaskID        string          `json:"task_id"`
	Status        string          `json:"status" example:"timeout"`
	Error         string          `json:"error"`
	PartialResult json.RawMessage `json:"partial_result" swaggertype:"object"`
}

// WatchResponse 后台等待入队响应
type WatchResponse struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status" example:"watching"`
	AsynqTaskID string `json:"asynq_task_id" example:"watch:550e8400-e29b-41d4-a716-446655440000"`
	Queue       string `json:"queue" example:"watch"`
}

// WatchInfoResponse 后台等待任务的状态
type WatchInfoResponse struct {
	TaskID        string     `json:"task_id"`
	AsynqTaskID   string     `json:"asynq_task_id"`
	State         string     `json:"state" example:"active"`
	LastError     string     `json:"last_error,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	NextProcessAt *time.Time `json:"next_process_at,omitempty"`
}

// WatchQueueStatsResponse watch 队列统计
type WatchQueueStatsResponse struct {
	Queue     string `json:"queue" example:"watch"`
	Size      int    `json:"size"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Completed int    `json:"completed"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Paused    bool   `json:"paused"`
}

// HistoryListRequest 任务历史查询
type HistoryListRequest struct {
	Status  string `form:"status" example:"finished"`
	Outcome string `form:"outcome" example:"completed"`
	Limit   int    `form:"limit" example:"50"`
	Offset  int    `form:"offset" example:"0"`
}

// HistoryListResponse 任务历史列表
type HistoryListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}
