package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/pkg/httpcontext"
	"github.com/taskpulse/backend/usecase/tracker"
)

type HealthHandler struct {
	baseHandler
	engine *tracker.Engine
}

func NewHealthHandler(engine *tracker.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
	}
}

// @Summary Health check
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"tasks":             h.engine.TaskCount(),
		"pending_reminders": h.engine.PendingReminders(),
	})
}
