package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/internal/calendar"
	"github.com/taskpulse/backend/pkg/httpcontext"
	"github.com/taskpulse/backend/usecase/tracker"
)

type CalendarHandler struct {
	baseHandler
	engine *tracker.Engine
}

func NewCalendarHandler(engine *tracker.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
	}
}

// @Summary Dates holding at least one task
// @Tags calendar
// @Router /api/v1/calendar/dates [get]
func (h *CalendarHandler) GetDates(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.engine.DatesWithTasks(stdCtx))
}

// @Summary Tasks due on a date
// @Tags calendar
// @Router /api/v1/calendar/{date} [get]
func (h *CalendarHandler) GetTasksOnDate(ctx *fasthttp.RequestCtx) {
	raw, _ := ctx.UserValue("date").(string)
	day, err := calendar.ParseDay(raw)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.engine.TasksOnDate(stdCtx, day))
}
