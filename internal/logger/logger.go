package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// L 全局 logger（未 Init 前丢弃所有输出）
	L = zerolog.Nop()
)

// Init 初始化日志器。production 为 true 时输出 JSON，否则输出控制台格式
func Init(production bool, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	L = New(os.Stdout, production)
	SetLevel(level)
}

// New 创建 logger，测试时可以写入 buffer
func New(w io.Writer, production bool) zerolog.Logger {
	if !production {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
			FieldsOrder: []string{
				"request_id",
				"task_id",
				"status",
				"method",
				"path",
				"duration(ms)",
				"client_ip",
				"op",
				"error",
			},
		}
	}
	return zerolog.New(w).With().Timestamp().Caller().Logger()
}

// ParseLevel 解析日志级别，无法识别时回退到 info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLevel 设置全局日志级别
func SetLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// WithRequestID 添加 request_id
func WithRequestID(requestID string) zerolog.Logger {
	return L.With().Str("request_id", requestID).Logger()
}

// WithTaskID 添加 task_id
func WithTaskID(taskID string) zerolog.Logger {
	return L.With().Str("task_id", taskID).Logger()
}

func Debug() *zerolog.Event { return L.Debug() }
func Info() *zerolog.Event  { return L.Info() }
func Warn() *zerolog.Event  { return L.Warn() }
func Error() *zerolog.Event { return L.Error() }
func Fatal() *zerolog.Event { return L.Fatal() }

// AsynqLogger 把 asynq 内部日志转接到 zerolog（实现 asynq.Logger）
type AsynqLogger struct {
	l zerolog.Logger
}

// NewAsynqLogger 基于全局 logger 创建，带 component=asynq 字段
func NewAsynqLogger() *AsynqLogger {
	return &AsynqLogger{l: L.With().Str("component", "asynq").Logger()}
}

func (a *AsynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a *AsynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a *AsynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a *AsynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a *AsynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
