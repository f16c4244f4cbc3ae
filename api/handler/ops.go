package handler

import (
	"bytes"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/internal/services"
	"github.com/taskpulse/backend/pkg/httpcontext"
	"github.com/taskpulse/backend/usecase/tracker"
)

// OpsHandler covers the operational surface: notifications, CSV export and
// explicit snapshot save/load.
type OpsHandler struct {
	baseHandler
	engine   *tracker.Engine
	recorder *services.Recorder
}

func NewOpsHandler(engine *tracker.Engine, recorder *services.Recorder, adapter *httpcontext.Adapter, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		recorder:    recorder,
	}
}

// @Summary Recently dispatched reminders
// @Tags ops
// @Router /api/v1/notifications [get]
func (h *OpsHandler) GetNotifications(ctx *fasthttp.RequestCtx) {
	var recent []services.Notification
	if h.recorder != nil {
		recent = h.recorder.Recent()
	}
	h.respondSuccess(ctx, http.StatusOK, recent)
}

// @Summary Export tasks as CSV
// @Tags ops
// @Router /api/v1/export/csv [get]
func (h *OpsHandler) ExportCSV(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var buf bytes.Buffer
	if err := h.engine.WriteCSV(stdCtx, &buf); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.SetContentType("text/csv")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(buf.Bytes())
}

// @Summary Persist the current state
// @Tags ops
// @Router /api/v1/snapshot/save [post]
func (h *OpsHandler) SaveSnapshot(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.Save(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Restore state from the last snapshot
// @Tags ops
// @Router /api/v1/snapshot/load [post]
func (h *OpsHandler) LoadSnapshot(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.Load(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
