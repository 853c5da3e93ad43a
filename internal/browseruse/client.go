package browseruse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/azhengyongqin/browser-use-gateway/internal/metrics"
	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
)

const (
	// MaxResponseSize 上游响应体最大读取大小（8MB，截图/媒体列表可能较大）
	MaxResponseSize = 8 * 1024 * 1024

	// maxErrorBodySize 错误响应体只保留前 1KB
	maxErrorBodySize = 1024
)

// Config 客户端配置，由调用方显式传入（不读环境变量）
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // 可选，测试时注入
}

// Client Browser Use API 客户端
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
	}
}

// RunTaskResult 创建任务的响应
type RunTaskResult struct {
	ID  string          `json:"id"`
	Raw json.RawMessage `json:"-"`
}

// RunTask 创建并启动新任务（POST /run-task），body 原样转发
func (c *Client) RunTask(ctx context.Context, body map[string]any) (*RunTaskResult, error) {
	raw, err := c.do(ctx, "run_task", http.MethodPost, "/run-task", nil, body)
	if err != nil {
		return nil, err
	}
	var out RunTaskResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode run-task response: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("run-task response missing id")
	}
	out.Raw = raw
	return &out, nil
}

// GetTask 获取任务完整详情（GET /task/{id}），也是等待循环的 fetch 实现
func (c *Client) GetTask(ctx context.Context, taskID string) (*model.TaskSnapshot, error) {
	raw, err := c.do(ctx, "get_task", http.MethodGet, taskPath(taskID, ""), nil, nil)
	if err != nil {
		return nil, err
	}
	var snap model.TaskSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", taskID, err)
	}
	return &snap, nil
}

// GetTaskStatus 只获取任务状态（GET /task/{id}/status）
func (c *Client) GetTaskStatus(ctx context.Context, taskID string) (json.RawMessage, error) {
	return c.do(ctx, "get_task_status", http.MethodGet, taskPath(taskID, "status"), nil, nil)
}

// StopTask 停止运行中的任务
func (c *Client) StopTask(ctx context.Context, taskID string) (json.RawMessage, error) {
	return c.do(ctx, "stop_task", http.MethodPut, taskPath(taskID, "stop"), nil, nil)
}

// PauseTask 暂停运行中的任务
func (c *Client) PauseTask(ctx context.Context, taskID string) (json.RawMessage, error) {
	return c.do(ctx, "pause_task", http.MethodPut, taskPath(taskID, "pause"), nil, nil)
}

// ResumeTask 恢复已暂停的任务
func (c *Client) ResumeTask(ctx context.Context, taskID string) (json.RawMessage, error) {
	return c.do(ctx, "resume_task", http.MethodPut, taskPath(taskID, "resume"), nil, nil)
}

// ListTasks 分页列出任务
func (c *Client) ListTasks(ctx context.Context, limit, offset int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return c.do(ctx, "list_tasks", http.MethodGet, "/tasks", q, nil)
}

// GetTaskMedia 获取任务录制的媒体
func (c *Client) GetTaskMedia(ctx context.Context, taskID string) (json.RawMessage, error) {
	return c.do(ctx, "get_task_media", http.MethodGet, taskPath(taskID, "media"), nil, nil)
}

// GetTaskScreenshots 获取任务截图
func (c *Client) GetTaskScreenshots(ctx context.Context, taskID string) (json.RawMessage, error) {
	return c.do(ctx, "get_task_screenshots", http.MethodGet, taskPath(taskID, "screenshots"), nil, nil)
}

// GetTaskGIF 获取任务 GIF
func (c *Client) GetTaskGIF(ctx context.Context, taskID string) (json.RawMessage, error) {
	return c.do(ctx, "get_task_gif", http.MethodGet, taskPath(taskID, "gif"), nil, nil)
}

func taskPath(taskID, action string) string {
	p := "/task/" + url.PathEscape(taskID)
	if action != "" {
		p += "/" + action
	}
	return p
}

// do 发送请求并返回 2xx 响应体；其它情况统一返回 *TransportError
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(op, 0, time.Since(start).Seconds())
		return nil, &TransportError{Op: op, Method: method, URL: u, Err: err}
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(op, resp.StatusCode, time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &TransportError{
			Op:         op,
			Method:     method,
			URL:        u,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	data, err := readAllWithLimit(resp.Body, MaxResponseSize)
	if err != nil {
		return nil, &TransportError{Op: op, Method: method, URL: u, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	return data, nil
}

// readAllWithLimit 读取响应体，超过 limit 返回 ResponseTooLargeError
func readAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: limit + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ResponseTooLargeError{Limit: limit}
	}
	return data, nil
}
