package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/planner/api/transport"
	"github.com/fastygo/planner/internal/infrastructure/monitor"
	"github.com/fastygo/planner/pkg/httpcontext"
)

// StatusSource is satisfied by *monitor.Monitor.
type StatusSource interface {
	GetStatus() monitor.Status
	IsReady() bool
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Liveness check
// @Tags health
// @Router /healthz [get]
func (h *HealthHandler) Live(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, map[string]bool{"ok": true})
}

// @Summary Readiness check
// @Tags health
// @Router /readyz [get]
func (h *HealthHandler) Ready(ctx *fasthttp.RequestCtx) {
	_, cancel := h.requestContext(ctx)
	defer cancel()

	if h.monitor == nil {
		h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError(transport.CodeUnavailable, "monitor not running", "", nil))
		return
	}

	status := h.monitor.GetStatus()
	payload := map[string]any{
		"timestamp": time.Now().UTC(),
		"services": map[string]any{
			"store": map[string]any{
				"driver": status.StoreDriver,
				"online": status.Store,
			},
			"cache": map[string]any{
				"enabled": status.CacheEnabled,
				"online":  status.Cache,
			},
		},
		"last_check": status.LastCheck,
	}

	if h.monitor.IsReady() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError(transport.CodeUnavailable, "store unreachable", "", payload))
}
