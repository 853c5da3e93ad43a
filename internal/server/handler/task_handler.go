package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/browser-use-gateway/internal/browseruse"
	"github.com/azhengyongqin/browser-use-gateway/internal/cache"
	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	"github.com/azhengyongqin/browser-use-gateway/internal/metrics"
	"github.com/azhengyongqin/browser-use-gateway/internal/repository"
	"github.com/azhengyongqin/browser-use-gateway/internal/server/dto"
	"github.com/azhengyongqin/browser-use-gateway/internal/worker"
	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

const (
	defaultListLimit = 10
	createdMessage   = "任务创建成功，使用 /api/v1/task/{task_id} 跟踪进度"

	// maxWaitSeconds 超过该值换算成 time.Duration 会溢出
	maxWaitSeconds = math.MaxInt64 / int64(time.Second)
)

// SnapshotCache 终态快照缓存
type SnapshotCache interface {
	GetTerminal(ctx context.Context, taskID string) (*model.TaskSnapshot, error)
	PutTerminal(ctx context.Context, snap *model.TaskSnapshot) error
}

// TaskHandlerDeps TaskHandler 依赖；Cache、History 为 nil 表示未启用
type TaskHandlerDeps struct {
	Client       *browseruse.Client
	Waiter       *waiter.Waiter
	WaitDefaults waiter.Options
	Cache        SnapshotCache
	History      repository.TaskRepository
}

// TaskHandler 转发 Browser Use API 的任务接口
type TaskHandler struct {
	client   *browseruse.Client
	waiter   *waiter.Waiter
	defaults waiter.Options
	cache    SnapshotCache
	history  repository.TaskRepository
	recorder *worker.Recorder
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(deps TaskHandlerDeps) *TaskHandler {
	h := &TaskHandler{
		client:   deps.Client,
		waiter:   deps.Waiter,
		defaults: deps.WaitDefaults,
		cache:    deps.Cache,
		history:  deps.History,
	}
	if h.waiter == nil {
		h.waiter = waiter.New()
	}

	var history worker.OutcomeStore
	if deps.History != nil {
		history = deps.History
	}
	var snapshots worker.SnapshotStore
	if deps.Cache != nil {
		snapshots = deps.Cache
	}
	h.recorder = worker.NewRecorder(history, snapshots)
	return h
}

// RunTask godoc
// @Summary 创建任务
// @Description 创建浏览器自动化任务。wait_for_completion=true 时阻塞等待任务结束，超时返回 408
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.RunTaskRequest true "任务参数"
// @Success 200 {object} dto.RunTaskResponse "wait_for_completion=true 时返回 dto.CompletedResponse"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 408 {object} dto.TimeoutResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /run-task [post]
func (h *TaskHandler) RunTask(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: `"task" 字段必填`})
		return
	}
	instructions, ok := body["task"].(string)
	if !ok || strings.TrimSpace(instructions) == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: `"task" 字段必填`})
		return
	}

	// 网关自己的参数，不转发给上游
	wait, err := popBool(body, "wait_for_completion")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	opts := h.defaults
	if timeout, ok, err := popSeconds(body, "timeout"); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	} else if ok {
		opts.Timeout = timeout
	}

	ctx := c.Request.Context()
	res, err := h.client.RunTask(ctx, body)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.history != nil {
		if err := h.history.RecordCreated(ctx, res.ID, instructions); err != nil {
			l := logger.WithTaskID(res.ID)
			l.Warn().Err(err).Msg("记录任务历史失败")
		}
	}

	if !wait {
		c.JSON(http.StatusOK, dto.RunTaskResponse{
			TaskID:  res.ID,
			Status:  "created",
			Message: createdMessage,
		})
		return
	}

	h.waitAndRespond(c, "run_task", res.ID, opts)
}

// GetTask godoc
// @Summary 获取任务详情
// @Description 获取任务完整详情，已结束的任务会从缓存返回
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} object
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	ctx := c.Request.Context()
	taskID := c.Param("task_id")

	if snap, ok := h.cachedTerminal(ctx, taskID); ok {
		c.JSON(http.StatusOK, snap)
		return
	}

	snap, err := h.client.GetTask(ctx, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.PutTerminal(ctx, snap); err != nil {
			l := logger.WithTaskID(taskID)
			l.Warn().Err(err).Msg("写入快照缓存失败")
		}
	}
	c.JSON(http.StatusOK, snap)
}

// GetTaskStatus godoc
// @Summary 获取任务状态
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id}/status [get]
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	h.relay(c, h.client.GetTaskStatus)
}

// StopTask godoc
// @Summary 停止任务
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id}/stop [put]
func (h *TaskHandler) StopTask(c *gin.Context) {
	h.relay(c, h.client.StopTask)
}

// PauseTask godoc
// @Summary 暂停任务
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id}/pause [put]
func (h *TaskHandler) PauseTask(c *gin.Context) {
	h.relay(c, h.client.PauseTask)
}

// ResumeTask godoc
// @Summary 恢复任务
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id}/resume [put]
func (h *TaskHandler) ResumeTask(c *gin.Context) {
	h.relay(c, h.client.ResumeTask)
}

// GetTaskMedia godoc
// @Summary 获取任务录屏
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id}/media [get]
func (h *TaskHandler) GetTaskMedia(c *gin.Context) {
	h.relay(c, h.client.GetTaskMedia)
}

// GetTaskScreenshots godoc
// @Summary 获取任务截图
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id}/screenshots [get]
func (h *TaskHandler) GetTaskScreenshots(c *gin.Context) {
	h.relay(c, h.client.GetTaskScreenshots)
}

// GetTaskGIF godoc
// @Summary 获取任务 GIF
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id}/gif [get]
func (h *TaskHandler) GetTaskGIF(c *gin.Context) {
	h.relay(c, h.client.GetTaskGIF)
}

// ListTasks godoc
// @Summary 查询任务列表
// @Description 分页查询上游任务列表，limit/offset 非法时使用默认值
// @Tags Tasks
// @Produce json
// @Param limit query int false "每页数量" default(10)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	limit := queryInt(c, "limit", defaultListLimit)
	offset := queryInt(c, "offset", 0)

	raw, err := h.client.ListTasks(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// WaitTask godoc
// @Summary 等待任务结束
// @Description 轮询任务直到 finished/failed/stopped 或超时。超时返回 408，partial_result 为最后一次获取的详情
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Param timeout query int false "超时时间（秒）" default(300)
// @Param poll_interval query int false "轮询间隔（秒）" default(2)
// @Success 200 {object} dto.CompletedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 408 {object} dto.TimeoutResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /task/{task_id}/wait [get]
func (h *TaskHandler) WaitTask(c *gin.Context) {
	taskID := c.Param("task_id")

	if snap, ok := h.cachedTerminal(c.Request.Context(), taskID); ok {
		metrics.RecordWait("wait", repository.OutcomeCompleted, 0)
		c.JSON(http.StatusOK, completed(taskID, snap))
		return
	}

	opts, err := waitOptionsFromQuery(c, h.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	h.waitAndRespond(c, "wait", taskID, opts)
}

// waitAndRespond 执行等待并按结果写响应
func (h *TaskHandler) waitAndRespond(c *gin.Context, source, taskID string, opts waiter.Options) {
	ctx := c.Request.Context()
	log := logger.WithTaskID(taskID)

	start := time.Now()
	snap, err := h.waiter.Wait(ctx, taskID, h.client.GetTask, opts)
	outcome := worker.OutcomeName(err)
	metrics.RecordWait(source, outcome, time.Since(start).Seconds())

	// 客户端断开时 ctx 已取消，记录结果使用独立 ctx
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	h.recorder.Record(recCtx, taskID, snap, err)

	if err != nil {
		var te *waiter.TimeoutError
		if errors.As(err, &te) {
			log.Info().Dur("timeout", te.Timeout).Msg("等待任务超时")
			c.JSON(http.StatusRequestTimeout, dto.TimeoutResponse{
				TaskID:        taskID,
				Status:        "timeout",
				Error:         te.Error(),
				PartialResult: snapshotJSON(te.Last),
			})
			return
		}
		respondError(c, err)
		return
	}

	log.Info().Str("status", string(snap.Status)).Msg("任务已结束")
	c.JSON(http.StatusOK, completed(taskID, snap))
}

func (h *TaskHandler) cachedTerminal(ctx context.Context, taskID string) (*model.TaskSnapshot, bool) {
	if h.cache == nil {
		return nil, false
	}
	snap, err := h.cache.GetTerminal(ctx, taskID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			l := logger.WithTaskID(taskID)
			l.Warn().Err(err).Msg("读取快照缓存失败")
		}
		return nil, false
	}
	return snap, true
}

// relay 原样转发上游响应
func (h *TaskHandler) relay(c *gin.Context, call func(ctx context.Context, taskID string) (json.RawMessage, error)) {
	raw, err := call(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// respondError 上游错误统一 500，不区分上游状态码
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	if browseruse.IsTransportError(err) {
		metrics.RecordError("upstream", strconv.Itoa(browseruse.StatusCode(err)))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Browser Use API 错误: " + err.Error()})
		return
	}
	metrics.RecordError("gateway", "internal")
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "内部错误: " + err.Error()})
}

func completed(taskID string, snap *model.TaskSnapshot) dto.CompletedResponse {
	return dto.CompletedResponse{
		TaskID: taskID,
		Status: "completed",
		Result: snapshotJSON(snap),
	}
}

func snapshotJSON(snap *model.TaskSnapshot) json.RawMessage {
	if snap == nil {
		return json.RawMessage("null")
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

// waitOptionsFromQuery 读取 ?timeout=&poll_interval=（秒），非数字使用默认，超出范围返回错误
func waitOptionsFromQuery(c *gin.Context, defaults waiter.Options) (waiter.Options, error) {
	opts := defaults
	var err error
	if opts.Timeout, err = querySeconds(c, "timeout", defaults.Timeout); err != nil {
		return opts, err
	}
	if opts.PollInterval, err = querySeconds(c, "poll_interval", defaults.PollInterval); err != nil {
		return opts, err
	}
	return opts, nil
}

func querySeconds(c *gin.Context, key string, def time.Duration) (time.Duration, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		// 超出 int64 的纯数字也属于超出范围
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%s 超出范围（最大 %d 秒）", key, maxWaitSeconds)
		}
		return def, nil
	}
	if n > maxWaitSeconds || n < -maxWaitSeconds {
		return 0, fmt.Errorf("%s 超出范围（最大 %d 秒）", key, maxWaitSeconds)
	}
	return time.Duration(n) * time.Second, nil
}

func queryInt(c *gin.Context, key string, def int) int {
	v, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func popBool(body map[string]any, key string) (bool, error) {
	v, ok := body[key]
	if !ok {
		return false, nil
	}
	delete(body, key)
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	default:
		return false, errors.New(key + " 必须是布尔值")
	}
}

func popSeconds(body map[string]any, key string) (time.Duration, bool, error) {
	v, ok := body[key]
	if !ok {
		return 0, false, nil
	}
	delete(body, key)
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		if math.Abs(n)*float64(time.Second) >= math.MaxInt64 {
			return 0, false, fmt.Errorf("%s 超出范围（最大 %d 秒）", key, maxWaitSeconds)
		}
		return time.Duration(n * float64(time.Second)), true, nil
	default:
		return 0, false, errors.New(key + " 必须是数字（秒）")
	}
}
