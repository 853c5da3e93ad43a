package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/azhengyongqin/browser-use-gateway/internal/browseruse"
	"github.com/azhengyongqin/browser-use-gateway/internal/healthcheck"
	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	"github.com/azhengyongqin/browser-use-gateway/internal/middleware"
	"github.com/azhengyongqin/browser-use-gateway/internal/repository"
	"github.com/azhengyongqin/browser-use-gateway/internal/server/dto"
	"github.com/azhengyongqin/browser-use-gateway/internal/server/handler"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

type Deps struct {
	// Client 上游 Browser Use API
	Client *browseruse.Client

	// Waiter 为 nil 时使用真实时钟
	Waiter       *waiter.Waiter
	WaitDefaults waiter.Options

	// 以下均为可选，nil 表示未启用
	Cache     handler.SnapshotCache
	History   repository.TaskRepository
	Watcher   handler.WatchEnqueuer
	Inspector handler.WatchInspector

	HealthChecker *healthcheck.HealthChecker
}

// NewRouter 提供 Gin HTTP API
// @title Browser Use Gateway API
// @version 1.0.0
// @description Browser Use Cloud API 网关：转发任务接口，并提供等待任务结束、后台等待和任务历史
// @BasePath /api/v1
// @schemes http https
func NewRouter(deps Deps) http.Handler {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("请求处理 panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "服务器内部错误"})
	}))

	// 全局中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.Metrics())
	r.Use(middleware.PayloadSizeLimit(middleware.MaxPayloadSize))
	r.Use(middleware.CORS())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "接口不存在"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "方法不允许"})
	})

	healthHandler := handler.NewHealthHandler(deps.HealthChecker)
	taskHandler := handler.NewTaskHandler(handler.TaskHandlerDeps{
		Client:       deps.Client,
		Waiter:       deps.Waiter,
		WaitDefaults: deps.WaitDefaults,
		Cache:        deps.Cache,
		History:      deps.History,
	})
	watchHandler := handler.NewWatchHandler(deps.Watcher, deps.Inspector, deps.WaitDefaults)
	historyHandler := handler.NewHistoryHandler(deps.History)

	// 健康检查路由
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Prometheus metrics 端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		api.POST("/run-task", taskHandler.RunTask)
		api.GET("/tasks", taskHandler.ListTasks)

		task := api.Group("/task/:task_id", middleware.ValidateTaskIDParam())
		task.GET("", taskHandler.GetTask)
		task.GET("/status", taskHandler.GetTaskStatus)
		task.PUT("/stop", taskHandler.StopTask)
		task.PUT("/pause", taskHandler.PauseTask)
		task.PUT("/resume", taskHandler.ResumeTask)
		task.GET("/media", taskHandler.GetTaskMedia)
		task.GET("/screenshots", taskHandler.GetTaskScreenshots)
		task.GET("/gif", taskHandler.GetTaskGIF)
		task.GET("/wait", taskHandler.WaitTask)
		task.POST("/watch", watchHandler.Watch)
		task.GET("/watch", watchHandler.GetWatch)

		api.GET("/watch/stats", watchHandler.Stats)

		api.GET("/history", historyHandler.ListHistory)
		api.GET("/history/:task_id", middleware.ValidateTaskIDParam(), historyHandler.GetHistory)
	}

	return r
}
