package healthcheck

import (
	"context"
	"sort"
	"time"
)

// ServiceName /health 返回的服务名
const ServiceName = "browser-use-api"

// Pinger 可被就绪检查探测的依赖（pgxpool.Pool、缓存等）
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker 健康检查器
type HealthChecker struct {
	deps    map[string]Pinger
	timeout time.Duration
	now     func() time.Time
}

// NewHealthChecker 创建健康检查器；nil 依赖会被忽略（表示未启用）
func NewHealthChecker(deps map[string]Pinger) *HealthChecker {
	h := &HealthChecker{
		deps:    map[string]Pinger{},
		timeout: 2 * time.Second,
		now:     time.Now,
	}
	for name, p := range deps {
		if p != nil {
			h.deps[name] = p
		}
	}
	return h
}

// HealthResult /health 的响应
type HealthResult struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

// CheckResult 健康检查结果
type CheckResult struct {
	Status string            `json:"status"` // "ok" or "error"
	Checks map[string]string `json:"checks"`
}

// Health 简单健康检查
func (h *HealthChecker) Health() HealthResult {
	return HealthResult{
		Status:    "healthy",
		Timestamp: h.now().Format(time.RFC3339Nano),
		Service:   ServiceName,
	}
}

// LivenessCheck 存活检查（快速返回，不检查依赖）
func (h *HealthChecker) LivenessCheck() CheckResult {
	return CheckResult{
		Status: "ok",
		Checks: map[string]string{"service": "running"},
	}
}

// ReadinessCheck 就绪检查（检查所有已启用的依赖）
func (h *HealthChecker) ReadinessCheck(ctx context.Context) CheckResult {
	result := CheckResult{Status: "ok", Checks: map[string]string{}}

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.ping(ctx, h.deps[name]); err != nil {
			result.Checks[name] = "error: " + err.Error()
			result.Status = "error"
			continue
		}
		result.Checks[name] = "ok"
	}
	return result
}

func (h *HealthChecker) ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return p.Ping(ctx)
}
