package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/api"
)

// =============================================================================
// 🏥 健康检查处理器
// =============================================================================

// CheckFunc 依赖探活函数
type CheckFunc func(ctx context.Context) error

// HealthHandler 处理存活与就绪探针
type HealthHandler struct {
	version string
	logger  *zap.Logger

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		version: version,
		logger:  logger.With(zap.String("handler", "health")),
		checks:  make(map[string]CheckFunc),
	}
}

// AddCheck 注册一个依赖探活检查
func (h *HealthHandler) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Health 处理 GET /health，进程存活即 ok
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, api.HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready 处理 GET /ready，逐个探活已注册依赖。
// 任一依赖失败时返回 503 并标记 degraded。
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string, len(checks))
	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			healthy = false
			components[name] = "unavailable"
			h.logger.Warn("readiness check failed",
				zap.String("component", name),
				zap.Error(err),
			)
		} else {
			components[name] = "ok"
		}
	}

	resp := api.HealthResponse{
		Status:     "ok",
		Version:    h.version,
		Components: components,
	}
	if !healthy {
		resp.Status = "degraded"
		WriteJSON(w, http.StatusServiceUnavailable, Response{
			Success:   false,
			Data:      resp,
			Timestamp: time.Now(),
		})
		return
	}

	WriteSuccess(w, resp)
}
