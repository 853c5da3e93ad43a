package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/browser-use-gateway/internal/healthcheck"
)

// HealthHandler 健康检查 Handler
type HealthHandler struct {
	healthChecker *healthcheck.HealthChecker
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(healthChecker *healthcheck.HealthChecker) *HealthHandler {
	if healthChecker == nil {
		healthChecker = healthcheck.NewHealthChecker(nil)
	}
	return &HealthHandler{healthChecker: healthChecker}
}

// Health godoc
// @Summary 健康检查
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthChecker.Health())
}

// Liveness godoc
// @Summary Liveness 检查
// @Description 服务存活检查，用于 Kubernetes liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} dto.CheckResponse
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthChecker.LivenessCheck())
}

// Readiness godoc
// @Summary Readiness 检查
// @Description 检查已启用的依赖（Redis、PostgreSQL）
// @Tags Health
// @Produce json
// @Success 200 {object} dto.CheckResponse
// @Failure 503 {object} dto.CheckResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.healthChecker.ReadinessCheck(c.Request.Context())
	if result.Status == "error" {
		c.JSON(http.StatusServiceUnavailable, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
