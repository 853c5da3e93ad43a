package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	asynqx "github.com/azhengyongqin/browser-use-gateway/internal/queue"
)

// Server 进程内的 asynq 消费端，只消费 watch 队列
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewServer 创建 asynq server 并注册 watch handler
func NewServer(redisURI string, concurrency int, p *Processor) (*Server, error) {
	opt, err := asynqx.NewRedisConnOpt(redisURI)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{asynqx.QueueWatch: 1},
		Logger:      logger.NewAsynqLogger(),
		LogLevel:    asynq.WarnLevel,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			logger.Error().Err(err).Str("type", t.Type()).Msg("watch 任务失败")
		}),
	})

	return &Server{server: srv, mux: NewMux(p)}, nil
}

// NewMux 路由 task type 到 handler
func NewMux(p *Processor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(asynqx.TypeWatchTask, p.HandleWatch)
	return mux
}

// Start 非阻塞启动
func (s *Server) Start() error {
	return s.server.Start(s.mux)
}

// Shutdown 等待正在执行的任务结束后退出
func (s *Server) Shutdown() {
	s.server.Shutdown()
}
