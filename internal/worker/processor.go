package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	"github.com/azhengyongqin/browser-use-gateway/internal/metrics"
	asynqx "github.com/azhengyongqin/browser-use-gateway/internal/queue"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

// Processor 处理 browseruse:watch 任务：在后台等待上游任务结束并记录结果
type Processor struct {
	fetch    waiter.FetchFunc
	waiter   *waiter.Waiter
	recorder *Recorder
}

// NewProcessor fetch 通常是 browseruse.Client.GetTask
func NewProcessor(fetch waiter.FetchFunc, w *waiter.Waiter, recorder *Recorder) *Processor {
	if w == nil {
		w = waiter.New()
	}
	return &Processor{fetch: fetch, waiter: w, recorder: recorder}
}

// HandleWatch asynq handler。超时和上游错误都不重试
func (p *Processor) HandleWatch(ctx context.Context, t *asynq.Task) error {
	payload, err := asynqx.ParseWatchPayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	log := logger.WithTaskID(payload.TaskID)
	asynqID, _ := asynq.GetTaskID(ctx)
	log.Info().
		Str("asynq_task_id", asynqID).
		Dur("timeout", payload.Timeout()).
		Dur("poll_interval", payload.PollInterval()).
		Msg("开始后台等待任务")

	start := time.Now()
	snap, waitErr := p.waiter.Wait(ctx, payload.TaskID, p.fetch, waiter.Options{
		PollInterval: payload.PollInterval(),
		Timeout:      payload.Timeout(),
	})
	outcome := OutcomeName(waitErr)
	metrics.RecordWait("watch", outcome, time.Since(start).Seconds())

	// asynq 的 ctx 可能已经结束，记录结果使用独立的超时
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	p.recorder.Record(recCtx, payload.TaskID, snap, waitErr)

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) || errors.Is(waitErr, context.DeadlineExceeded) {
			// 服务关闭时 asynq 会取消 ctx，返回原错误让任务重新入队
			log.Warn().Err(waitErr).Msg("后台等待被中断")
			return waitErr
		}
		log.Warn().Err(waitErr).Str("outcome", outcome).Msg("后台等待结束")
		metrics.RecordError("worker", outcome)
		return fmt.Errorf("%v: %w", waitErr, asynq.SkipRetry)
	}

	log.Info().Str("status", string(snap.Status)).Msg("任务已结束")
	return nil
}
