package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

// DefaultBaseURL 未设置 GATEWAY_URL 时使用
const DefaultBaseURL = "http://127.0.0.1:9000"

// Client 网关 HTTP 客户端
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient 创建客户端；baseURL 为空时依次使用 GATEWAY_URL 和 DefaultBaseURL
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		_ = LoadEnv()
		baseURL = os.Getenv("GATEWAY_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		// 同步等待可能持续数分钟，超时交给 ctx 控制
		HTTPClient: &http.Client{},
	}
}

// APIError 网关返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway status %d: %s", e.StatusCode, e.Message)
}

// RunTask 创建任务。WaitForCompletion 为 true 且超时时返回 *TimeoutError
func (c *Client) RunTask(ctx context.Context, req RunTaskRequest) (*RunTaskResponse, error) {
	var raw json.RawMessage
	status, err := c.do(ctx, http.MethodPost, "/api/v1/run-task", nil, req, &raw, http.StatusRequestTimeout)
	if err != nil {
		return nil, err
	}
	if status == http.StatusRequestTimeout {
		return nil, decodeTimeout(raw, time.Duration(req.TimeoutSeconds)*time.Second)
	}

	var out RunTaskResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode run-task response: %w", err)
	}
	return &out, nil
}

// GetTask 获取任务详情
func (c *Client) GetTask(ctx context.Context, taskID string) (*TaskSnapshot, error) {
	var out TaskSnapshot
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/task/"+url.PathEscape(taskID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopTask 停止任务
func (c *Client) StopTask(ctx context.Context, taskID string) error {
	_, err := c.do(ctx, http.MethodPut, "/api/v1/task/"+url.PathEscape(taskID)+"/stop", nil, nil, nil)
	return err
}

// WaitTask 由网关等待任务结束（GET /task/{id}/wait）。
// 超时返回 *TimeoutError，Last 为网关返回的 partial_result
func (c *Client) WaitTask(ctx context.Context, taskID string, timeout, pollInterval time.Duration) (*TaskSnapshot, error) {
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(int(timeout/time.Second)))
	q.Set("poll_interval", strconv.Itoa(int(pollInterval/time.Second)))

	var raw json.RawMessage
	status, err := c.do(ctx, http.MethodGet, "/api/v1/task/"+url.PathEscape(taskID)+"/wait", q, nil, &raw, http.StatusRequestTimeout)
	if err != nil {
		return nil, err
	}

	if status == http.StatusRequestTimeout {
		return nil, decodeTimeout(raw, timeout)
	}

	var out RunTaskResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode wait response: %w", err)
	}
	if out.Result == nil {
		return nil, errors.New("wait response missing result")
	}
	return out.Result, nil
}

// WaitForCompletion 在客户端轮询 GetTask 直到任务结束，opts.Observer 可用于输出进度
func (c *Client) WaitForCompletion(ctx context.Context, taskID string, opts WaitOptions) (*TaskSnapshot, error) {
	return waiter.Wait(ctx, taskID, c.GetTask, opts)
}

// Watch 让网关在后台等待任务结束
func (c *Client) Watch(ctx context.Context, taskID string, timeout, pollInterval time.Duration) (*WatchResponse, error) {
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(int(timeout/time.Second)))
	q.Set("poll_interval", strconv.Itoa(int(pollInterval/time.Second)))

	var out WatchResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/task/"+url.PathEscape(taskID)+"/watch", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeTimeout 把网关的 408 响应还原为 *TimeoutError
func decodeTimeout(raw json.RawMessage, timeout time.Duration) error {
	var tr timeoutResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return fmt.Errorf("decode timeout response: %w", err)
	}
	return &waiter.TimeoutError{TaskID: tr.TaskID, Timeout: timeout, Last: tr.PartialResult}
}

// do 发送请求；2xx 和 accept 中的状态码视为成功并解码到 out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, accept ...int) (int, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	for _, code := range accept {
		ok = ok || resp.StatusCode == code
	}
	if !ok {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
