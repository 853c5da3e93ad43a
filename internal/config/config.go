package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultBrowserUseBaseURL = "https://api.browser-use.com/api/v1"

// Config 应用配置
type Config struct {
	HTTP       HTTPConfig
	BrowserUse BrowserUseConfig
	Wait       WaitConfig
	Log        LogConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Watch      WatchConfig
	Postgres   PostgresConfig
	DBPool     DBPoolConfig
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr  string
	Debug bool
}

// BrowserUseConfig 上游 Browser Use API 配置
type BrowserUseConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration // 单次请求超时
}

// WaitConfig 等待任务完成的默认参数
type WaitConfig struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level string
}

// RedisConfig Redis 配置（为空则不启用缓存和 watch 队列）
type RedisConfig struct {
	Addr string
}

// CacheConfig 终态快照缓存配置
type CacheConfig struct {
	TTL  time.Duration
	Size int // 未配置 Redis 时进程内缓存的条目上限
}

// WatchConfig 后台 watch 任务配置
type WatchConfig struct {
	Concurrency int
}

// PostgresConfig PostgreSQL 配置（为空则不记录任务历史）
type PostgresConfig struct {
	DSN string
}

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// Load 加载配置
func Load() (*Config, error) {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")

	// 允许从环境变量读取（优先级最高）
	v.AutomaticEnv()

	// 读取配置文件（如果存在）
	_ = v.ReadInConfig() // 忽略错误，因为可能只使用环境变量

	cfg := &Config{}

	// HTTP 配置
	cfg.HTTP.Addr = v.GetString("HTTP_ADDR")
	if cfg.HTTP.Addr == "" {
		port := v.GetString("PORT")
		if port == "" {
			port = "9000"
		}
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.Debug = v.GetBool("DEBUG")

	// Browser Use 配置
	cfg.BrowserUse.APIKey = strings.TrimSpace(v.GetString("BROWSER_USE_API_KEY"))
	cfg.BrowserUse.BaseURL = strings.TrimRight(v.GetString("BROWSER_USE_BASE_URL"), "/")
	if cfg.BrowserUse.BaseURL == "" {
		cfg.BrowserUse.BaseURL = defaultBrowserUseBaseURL
	}
	cfg.BrowserUse.Timeout = v.GetDuration("UPSTREAM_TIMEOUT")
	if cfg.BrowserUse.Timeout <= 0 {
		cfg.BrowserUse.Timeout = 30 * time.Second
	}

	// 等待参数（单位：秒）
	cfg.Wait.Timeout = 300 * time.Second
	if v.IsSet("DEFAULT_TIMEOUT") {
		cfg.Wait.Timeout = time.Duration(v.GetInt("DEFAULT_TIMEOUT")) * time.Second
	}
	cfg.Wait.PollInterval = 2 * time.Second
	if v.IsSet("DEFAULT_POLL_INTERVAL") {
		cfg.Wait.PollInterval = time.Duration(v.GetInt("DEFAULT_POLL_INTERVAL")) * time.Second
	}

	// 日志配置
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// Redis 配置
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")

	cfg.Cache.TTL = v.GetDuration("CACHE_TTL")
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
	cfg.Cache.Size = v.GetInt("CACHE_SIZE")
	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = 1024
	}

	cfg.Watch.Concurrency = v.GetInt("WATCH_CONCURRENCY")
	if cfg.Watch.Concurrency <= 0 {
		cfg.Watch.Concurrency = 10
	}

	// PostgreSQL 配置
	cfg.Postgres.DSN = v.GetString("POSTGRES_DSN")

	// 数据库连接池配置
	cfg.DBPool.MaxConns = int32(v.GetInt("DB_MAX_CONNS"))
	if cfg.DBPool.MaxConns == 0 {
		cfg.DBPool.MaxConns = 20
	}

	cfg.DBPool.MinConns = int32(v.GetInt("DB_MIN_CONNS"))
	if cfg.DBPool.MinConns == 0 {
		cfg.DBPool.MinConns = 5
	}

	cfg.DBPool.MaxConnLifetime = v.GetDuration("DB_MAX_CONN_LIFETIME")
	if cfg.DBPool.MaxConnLifetime == 0 {
		cfg.DBPool.MaxConnLifetime = 30 * time.Minute
	}

	cfg.DBPool.MaxConnIdleTime = v.GetDuration("DB_MAX_CONN_IDLE_TIME")
	if cfg.DBPool.MaxConnIdleTime == 0 {
		cfg.DBPool.MaxConnIdleTime = 5 * time.Minute
	}

	cfg.DBPool.HealthCheckPeriod = v.GetDuration("DB_HEALTH_CHECK_PERIOD")
	if cfg.DBPool.HealthCheckPeriod == 0 {
		cfg.DBPool.HealthCheckPeriod = 1 * time.Minute
	}

	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.BrowserUse.APIKey == "" {
		return fmt.Errorf("BROWSER_USE_API_KEY 未配置，请设置环境变量或创建 .env 文件")
	}
	u, err := url.Parse(c.BrowserUse.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BROWSER_USE_BASE_URL 无效: %q", c.BrowserUse.BaseURL)
	}
	if c.Wait.Timeout < 0 || c.Wait.PollInterval < 0 {
		return fmt.Errorf("DEFAULT_TIMEOUT / DEFAULT_POLL_INTERVAL 不能为负数")
	}
	return nil
}

// RedisURI 返回 asynq/go-redis 可用的 URI（redis://host:port/db）
func (c *Config) RedisURI() string {
	addr := c.Redis.Addr
	if addr == "" {
		return ""
	}
	if !strings.HasPrefix(addr, "redis://") && !strings.HasPrefix(addr, "rediss://") {
		addr = "redis://" + addr + "/0"
	}
	return addr
}
