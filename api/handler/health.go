package handler

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/internal/infrastructure/monitor"
	"github.com/crowdvault/backend/pkg/httpcontext"
)

// HealthHandler reports liveness and the monitor's view of the backing stores.
type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(adapter *httpcontext.Adapter, mon *monitor.Monitor, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

func (h *HealthHandler) Health(ctx *fasthttp.RequestCtx) {
	status := fasthttp.StatusOK
	payload := map[string]interface{}{
		"status": "ok",
	}
	if h.monitor != nil {
		snapshot := h.monitor.GetStatus()
		payload["components"] = snapshot
		if !h.monitor.IsOnline() {
			status = fasthttp.StatusServiceUnavailable
			payload["status"] = "degraded"
		}
	}
	h.respondSuccess(ctx, status, payload)
}
