package dto

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error" example:"Browser Use API 错误: unexpected status 404"`
}

// HealthResponse /health 响应
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp string `json:"timestamp" example:"2025-01-01T00:00:00Z"`
	Service   string `json:"service" example:"browser-use-api"`
}

// CheckResponse /healthz、/readyz 响应
type CheckResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}
