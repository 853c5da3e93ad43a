package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/azhengyongqin/browser-use-gateway/docs" // Swagger docs
	"github.com/azhengyongqin/browser-use-gateway/internal/browseruse"
	"github.com/azhengyongqin/browser-use-gateway/internal/cache"
	"github.com/azhengyongqin/browser-use-gateway/internal/config"
	"github.com/azhengyongqin/browser-use-gateway/internal/healthcheck"
	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	asynqx "github.com/azhengyongqin/browser-use-gateway/internal/queue"
	"github.com/azhengyongqin/browser-use-gateway/internal/repository"
	httpserver "github.com/azhengyongqin/browser-use-gateway/internal/server"
	"github.com/azhengyongqin/browser-use-gateway/internal/storage/postgres"
	"github.com/azhengyongqin/browser-use-gateway/internal/worker"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
)

// @title Browser Use Gateway API
// @version 1.0.0
// @description Browser Use Cloud API 网关
// @license.name MIT
// @BasePath /api/v1
// @schemes http https
// @host localhost:9000

// 说明：
// - 一个进程同时运行 Gin(HTTP) 和 watch 队列的 asynq server。
// - Redis、PostgreSQL 都是可选的，未配置时对应接口返回 503/501。

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.Init(false, "info")
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	logger.Init(!cfg.HTTP.Debug, cfg.Log.Level)
	if !cfg.HTTP.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 验证配置
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("配置验证失败")
	}

	logger.Info().
		Str("http", cfg.HTTP.Addr).
		Str("upstream", cfg.BrowserUse.BaseURL).
		Dur("default_timeout", cfg.Wait.Timeout).
		Dur("default_poll_interval", cfg.Wait.PollInterval).
		Bool("redis", cfg.Redis.Addr != "").
		Bool("postgres", cfg.Postgres.DSN != "").
		Msg("服务启动")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := browseruse.NewClient(browseruse.Config{
		APIKey:  cfg.BrowserUse.APIKey,
		BaseURL: cfg.BrowserUse.BaseURL,
		Timeout: cfg.BrowserUse.Timeout,
	})
	waitDefaults := waiter.Options{
		PollInterval: cfg.Wait.PollInterval,
		Timeout:      cfg.Wait.Timeout,
	}

	deps := httpserver.Deps{
		Client:       client,
		WaitDefaults: waitDefaults,
	}
	pingers := map[string]healthcheck.Pinger{}

	// 任务历史：先用 GORM 建表，再用 pgxpool 读写
	var taskRepo *repository.TaskRepo
	if cfg.Postgres.DSN != "" {
		if err := postgres.Migrate(ctx, cfg.Postgres.DSN, repository.Models()...); err != nil {
			logger.Fatal().Err(err).Msg("数据库迁移失败")
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, postgres.PoolConfig{
			MaxConns:          cfg.DBPool.MaxConns,
			MinConns:          cfg.DBPool.MinConns,
			MaxConnLifetime:   cfg.DBPool.MaxConnLifetime,
			MaxConnIdleTime:   cfg.DBPool.MaxConnIdleTime,
			HealthCheckPeriod: cfg.DBPool.HealthCheckPeriod,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("连接数据库失败")
		}
		defer pool.Close()

		taskRepo = repository.NewTaskRepo(pool)
		deps.History = taskRepo
		pingers["postgres"] = pool
		logger.Info().Msg("任务历史已启用")
	}

	// Redis：终态快照缓存 + watch 队列
	var watchServer *worker.Server
	if redisURI := cfg.RedisURI(); redisURI != "" {
		snapshots, err := cache.NewSnapshotCache(redisURI, cfg.Cache.TTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("连接 Redis 失败")
		}
		defer snapshots.Close()
		deps.Cache = snapshots
		pingers["redis"] = snapshots

		watchClient, asynqClient, err := asynqx.NewClient(redisURI)
		if err != nil {
			logger.Fatal().Err(err).Msg("创建 asynq client 失败")
		}
		defer asynqClient.Close()
		deps.Watcher = watchClient

		inspector, err := asynqx.NewInspector(redisURI)
		if err != nil {
			logger.Fatal().Err(err).Msg("创建 asynq inspector 失败")
		}
		defer inspector.Close()
		deps.Inspector = inspector

		var history worker.OutcomeStore
		if taskRepo != nil {
			history = taskRepo
		}
		processor := worker.NewProcessor(client.GetTask, nil, worker.NewRecorder(history, snapshots))
		watchServer, err = worker.NewServer(redisURI, cfg.Watch.Concurrency, processor)
		if err != nil {
			logger.Fatal().Err(err).Msg("创建 watch server 失败")
		}
		if err := watchServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("启动 watch server 失败")
		}
		logger.Info().Int("concurrency", cfg.Watch.Concurrency).Msg("后台等待已启用")
	} else {
		deps.Cache = cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL)
		logger.Info().Int("size", cfg.Cache.Size).Msg("未配置 Redis，使用进程内快照缓存")
	}

	deps.HealthChecker = healthcheck.NewHealthChecker(pingers)

	// 同步等待可能持续数分钟，不设置 WriteTimeout
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpserver.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP 服务监听")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP 服务错误")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(shutdownCtx)
	if watchServer != nil {
		watchServer.Shutdown()
	}
	logger.Info().Msg("服务已优雅关闭")
}
