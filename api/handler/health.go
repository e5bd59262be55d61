package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/api/transport"
	"github.com/fastygo/lifetrack/internal/infrastructure/monitor"
	"github.com/fastygo/lifetrack/pkg/httpcontext"
)

// StatusSource reports dependency health.
type StatusSource interface {
	GetStatus() monitor.Status
}

// ModeSource reports whether documents go to the remote tier.
type ModeSource interface {
	Mode() string
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
	storage ModeSource
}

func NewHealthHandler(mon StatusSource, storage ModeSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		storage:     storage,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	healthy := status.Buffer
	for _, ok := range status.Dependencies {
		healthy = healthy && ok
	}

	payload := transport.HealthResponse{
		Timestamp:   time.Now().UTC(),
		LastCheck:   status.LastCheck,
		Services:    status.Dependencies,
		StorageMode: h.storage.Mode(),
		Buffer: transport.BufferHealth{
			Online: status.Buffer,
			Size:   status.BufferSize,
		},
	}

	if healthy {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
