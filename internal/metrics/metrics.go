package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugateway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bugateway_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 上游 Browser Use API 调用指标
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugateway_upstream_requests_total",
			Help: "Total number of requests sent to the Browser Use API",
		},
		[]string{"operation", "status"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bugateway_upstream_request_duration_seconds",
			Help:    "Browser Use API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// 等待任务完成指标
	WaitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugateway_waits_total",
			Help: "Total number of completion waits by outcome",
		},
		[]string{"source", "outcome"},
	)

	WaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bugateway_wait_duration_seconds",
			Help:    "Completion wait duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"source"},
	)

	// 缓存指标
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugateway_cache_lookups_total",
			Help: "Terminal snapshot cache lookups",
		},
		[]string{"result"},
	)

	// 错误指标
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugateway_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "type"},
	)
)

// RecordHTTPRequest 记录 HTTP 请求
func RecordHTTPRequest(method, path string, status int, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, statusClass(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordUpstreamRequest 记录一次上游调用；status 为 0 表示网络错误
func RecordUpstreamRequest(operation string, status int, duration float64) {
	UpstreamRequestsTotal.WithLabelValues(operation, statusClass(status)).Inc()
	UpstreamRequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordWait 记录一次等待结果（outcome: terminal/timeout/error/cancelled）
func RecordWait(source, outcome string, duration float64) {
	WaitsTotal.WithLabelValues(source, outcome).Inc()
	WaitDuration.WithLabelValues(source).Observe(duration)
}

// RecordCacheLookup 记录缓存命中情况
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// RecordError 记录错误
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// statusClass 将 HTTP 状态码转为类别
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
