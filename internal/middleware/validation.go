package middleware

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// MaxPayloadSize 请求体上限（1MB，run-task 的 body 只是任务描述和少量参数）
const MaxPayloadSize = 1 << 20

// TaskIDRegex 上游 task id 是 UUID，这里放宽到字母数字下划线连字符
var TaskIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// ValidateTaskID 验证 task id
func ValidateTaskID(taskID string) bool {
	return TaskIDRegex.MatchString(taskID)
}

// ValidateTaskIDParam 验证路径参数中的 task_id
func ValidateTaskIDParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("task_id")
		if taskID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
			return
		}
		if !ValidateTaskID(taskID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "task_id 格式无效，必须是1-128个字母、数字、下划线或连字符",
			})
			return
		}
		c.Next()
	}
}

// PayloadSizeLimit 限制请求体大小：Content-Length 超限直接拒绝，未声明长度的用 MaxBytesReader 兜底
func PayloadSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("请求体过大，最大允许 %d 字节", maxSize),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
