package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/browser-use-gateway/internal/repository"
	"github.com/azhengyongqin/browser-use-gateway/internal/server/dto"
)

// HistoryHandler 网关记录的任务历史
type HistoryHandler struct {
	repo repository.TaskRepository
}

func NewHistoryHandler(repo repository.TaskRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// ListHistory godoc
// @Summary 查询任务历史
// @Description 需要配置 POSTGRES_DSN
// @Tags History
// @Produce json
// @Param status query string false "上游任务状态"
// @Param outcome query string false "等待结果：pending/completed/timeout/error"
// @Param limit query int false "每页数量" default(50)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} dto.HistoryListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 501 {object} dto.ErrorResponse
// @Router /history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: "任务历史未启用，请配置 POSTGRES_DSN"})
		return
	}

	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	filter := repository.ListTasksFilter{
		Status:  req.Status,
		Outcome: req.Outcome,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}

	ctx := c.Request.Context()
	items, err := h.repo.ListTasks(ctx, filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	total, err := h.repo.CountTasks(ctx, filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.HistoryListResponse{Items: items, Total: total})
}

// GetHistory godoc
// @Summary 获取单个任务历史
// @Tags History
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} repository.TaskRecord
// @Failure 404 {object} dto.ErrorResponse
// @Failure 501 {object} dto.ErrorResponse
// @Router /history/{task_id} [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: "任务历史未启用，请配置 POSTGRES_DSN"})
		return
	}

	rec, err := h.repo.GetTask(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "任务不存在"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
