package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	asynqx "github.com/azhengyongqin/browser-use-gateway/internal/queue"
	"github.com/azhengyongqin/browser-use-gateway/internal/server/dto"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

const watchDisabled = "后台等待未启用，请配置 REDIS_ADDR"

// WatchEnqueuer watch 任务入队
type WatchEnqueuer interface {
	EnqueueWatch(ctx context.Context, p asynqx.WatchPayload) (*asynq.TaskInfo, error)
}

// WatchInspector 查询 watch 队列（*asynq.Inspector）
type WatchInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
}

// WatchHandler 后台等待相关 API；enqueuer 为 nil 时所有接口返回 503
type WatchHandler struct {
	enqueuer  WatchEnqueuer
	inspector WatchInspector
	defaults  waiter.Options
}

func NewWatchHandler(enqueuer WatchEnqueuer, inspector WatchInspector, defaults waiter.Options) *WatchHandler {
	return &WatchHandler{enqueuer: enqueuer, inspector: inspector, defaults: defaults}
}

// Watch godoc
// @Summary 后台等待任务结束
// @Description 入队一个 watch 任务，由后台 worker 等待任务结束并记录结果。
// @Description 同一任务同时只能有一个 watch（409）。已结束的 watch 记录保留 24 小时供查询，期间再次 watch 会先删除旧记录再入队
// @Tags Watch
// @Produce json
// @Param task_id path string true "任务 ID"
// @Param timeout query int false "超时时间（秒）" default(300)
// @Param poll_interval query int false "轮询间隔（秒）" default(2)
// @Success 202 {object} dto.WatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /task/{task_id}/watch [post]
func (h *WatchHandler) Watch(c *gin.Context) {
	if h.enqueuer == nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: watchDisabled})
		return
	}

	taskID := c.Param("task_id")
	opts, err := waitOptionsFromQuery(c, h.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	payload := asynqx.WatchPayload{
		TaskID:              taskID,
		PollIntervalSeconds: int(max(opts.PollInterval, 0) / time.Second),
		TimeoutSeconds:      int(max(opts.Timeout, 0) / time.Second),
	}
	info, err := h.enqueuer.EnqueueWatch(c.Request.Context(), payload)
	if errors.Is(err, asynqx.ErrAlreadyWatching) && h.releaseFinished(taskID) {
		info, err = h.enqueuer.EnqueueWatch(c.Request.Context(), payload)
	}
	if err != nil {
		if errors.Is(err, asynqx.ErrAlreadyWatching) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "该任务已在后台等待中"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "入队失败: " + err.Error()})
		return
	}

	l := logger.WithTaskID(taskID)
	l.Info().Str("asynq_task_id", info.ID).Msg("已入队后台等待")
	c.JSON(http.StatusAccepted, dto.WatchResponse{
		TaskID:      taskID,
		Status:      "watching",
		AsynqTaskID: info.ID,
		Queue:       info.Queue,
	})
}

// releaseFinished 旧 watch 已结束（completed/archived）时删除其记录，返回是否已删除
func (h *WatchHandler) releaseFinished(taskID string) bool {
	if h.inspector == nil {
		return false
	}
	id := asynqx.WatchTaskID(taskID)
	info, err := h.inspector.GetTaskInfo(asynqx.QueueWatch, id)
	if err != nil {
		return false
	}
	if info.State != asynq.TaskStateCompleted && info.State != asynq.TaskStateArchived {
		return false
	}
	if err := h.inspector.DeleteTask(asynqx.QueueWatch, id); err != nil {
		l := logger.WithTaskID(taskID)
		l.Warn().Err(err).Msg("删除已结束的 watch 记录失败")
		return false
	}
	return true
}

// GetWatch godoc
// @Summary 查询后台等待状态
// @Tags Watch
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} dto.WatchInfoResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /task/{task_id}/watch [get]
func (h *WatchHandler) GetWatch(c *gin.Context) {
	if h.inspector == nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: watchDisabled})
		return
	}

	taskID := c.Param("task_id")
	info, err := h.inspector.GetTaskInfo(asynqx.QueueWatch, asynqx.WatchTaskID(taskID))
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "该任务没有后台等待记录"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp := dto.WatchInfoResponse{
		TaskID:      taskID,
		AsynqTaskID: info.ID,
		State:       info.State.String(),
		LastError:   info.LastErr,
	}
	if !info.CompletedAt.IsZero() {
		resp.CompletedAt = &info.CompletedAt
	}
	if !info.NextProcessAt.IsZero() {
		resp.NextProcessAt = &info.NextProcessAt
	}
	c.JSON(http.StatusOK, resp)
}

// Stats godoc
// @Summary watch 队列统计
// @Tags Watch
// @Produce json
// @Success 200 {object} dto.WatchQueueStatsResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /watch/stats [get]
func (h *WatchHandler) Stats(c *gin.Context) {
	if h.inspector == nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: watchDisabled})
		return
	}

	qi, err := h.inspector.GetQueueInfo(asynqx.QueueWatch)
	if err != nil {
		// 从未入队过时队列不存在
		if errors.Is(err, asynq.ErrQueueNotFound) {
			c.JSON(http.StatusOK, dto.WatchQueueStatsResponse{Queue: asynqx.QueueWatch})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.WatchQueueStatsResponse{
		Queue:     qi.Queue,
		Size:      qi.Size,
		Pending:   qi.Pending,
		Active:    qi.Active,
		Scheduled: qi.Scheduled,
		Retry:     qi.Retry,
		Archived:  qi.Archived,
		Completed: qi.Completed,
		Processed: qi.Processed,
		Failed:    qi.Failed,
		Paused:    qi.Paused,
	})
}
