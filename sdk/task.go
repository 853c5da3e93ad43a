package sdk

import (
	"encoding/json"
)

// RunTaskRequest 创建任务请求。Extra 中的字段会原样合并进请求体
type RunTaskRequest struct {
	Task              string         `json:"task"`
	LLMModel          string         `json:"llm_model,omitempty"`
	AllowedDomains    []string       `json:"allowed_domains,omitempty"`
	SaveBrowserData   bool           `json:"save_browser_data,omitempty"`
	UseAdblock        bool           `json:"use_adblock,omitempty"`
	UseProxy          bool           `json:"use_proxy,omitempty"`
	ProxyCountryCode  string         `json:"proxy_country_code,omitempty"`
	HighlightElements bool           `json:"highlight_elements,omitempty"`
	WaitForCompletion bool           `json:"wait_for_completion,omitempty"`
	TimeoutSeconds    int            `json:"timeout,omitempty"`
	Extra             map[string]any `json:"-"`
}

func (r RunTaskRequest) MarshalJSON() ([]byte, error) {
	type alias RunTaskRequest
	b, err := json.Marshal(alias(r))
	if err != nil || len(r.Extra) == 0 {
		return b, err
	}

	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// RunTaskResponse 创建任务响应。WaitForCompletion 为 true 时 Result 为任务详情
type RunTaskResponse struct {
	TaskID  string        `json:"task_id"`
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Result  *TaskSnapshot `json:"result,omitempty"`
}

// timeoutResponse 网关 408 响应
type timeoutResponse struct {
	TaskID        string        `json:"task_id"`
	Status        string        `json:"status"`
	Error         string        `json:"error"`
	PartialResult *TaskSnapshot `json:"partial_result"`
}

// WatchResponse 后台等待入队响应
type WatchResponse struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status"`
	AsynqTaskID string `json:"asynq_task_id"`
	Queue       string `json:"queue"`
}
