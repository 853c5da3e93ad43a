package middleware

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
)

// maxErrorBodyLog 5xx 时最多记录的响应体大小
const maxErrorBodyLog = 2048

// bodyCapture 记录响应大小，并缓存前 2KB 响应体用于 5xx 排查
type bodyCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
	size int
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	if remain := maxErrorBodyLog - w.body.Len(); remain > 0 {
		w.body.Write(b[:min(len(b), remain)])
	}
	return n, err
}

// AccessLog 记录每个请求；task_id 路径参数会一并输出
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		bc := &bodyCapture{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = bc

		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = logger.L.Error()
		case status >= 400:
			ev = logger.L.Warn()
		default:
			ev = logger.L.Info()
		}

		if id := GetRequestID(c); id != "" {
			ev = ev.Str("request_id", id)
		}
		if taskID := c.Param("task_id"); taskID != "" {
			ev = ev.Str("task_id", taskID)
		}
		ev = ev.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Dur("duration(ms)", time.Since(start)).
			Int("response_size", bc.size).
			Str("client_ip", c.ClientIP())

		if c.Request.URL.RawQuery != "" {
			ev = ev.Str("query", c.Request.URL.RawQuery)
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("error", c.Errors.String())
		}
		if status >= 500 && bc.body.Len() > 0 {
			ev = ev.Str("response_body", bc.body.String())
		}

		ev.Msg("HTTP 请求")
	}
}

// GetRequestID 从上下文中获取请求 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
