package browseruse

import (
	"errors"
	"fmt"
)

// TransportError 调用 Browser Use API 失败：网络错误或非 2xx 响应。
// 网关不做重试，遇到即失败。
type TransportError struct {
	Op         string // 操作名，例如 get_task
	Method     string
	URL        string
	StatusCode int    // 0 表示未收到响应
	Body       string // 非 2xx 时的响应体（截断）
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError 判断错误链中是否包含 TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode 返回错误链中 TransportError 的 HTTP 状态码（没有则为 0）
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// ResponseTooLargeError 响应体超过限制
type ResponseTooLargeError struct {
	Limit int64
}

func (e ResponseTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeded limit of %d bytes", e.Limit)
}
