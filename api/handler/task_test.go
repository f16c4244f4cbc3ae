package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/taskpulse/backend/usecase/tracker"
)

func postCtx(body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetBodyString(body)
	return ctx
}

func TestCreateTaskRejectsBadPayload(t *testing.T) {
	h := NewTaskHandler(tracker.New(nil, nil), nil, nil)

	cases := map[string]string{
		"malformed json": `{"title":`,
		"bad deadline":   `{"title":"x","deadline":"tomorrow"}`,
		"bad offset":     `{"title":"x","reminder_offset":"soon"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := postCtx(body)
			h.CreateTask(ctx)

			assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
			assert.Contains(t, string(ctx.Response.Body()), "INVALID")
		})
	}
}

func TestCreateTaskAcceptsValidPayload(t *testing.T) {
	h := NewTaskHandler(tracker.New(nil, nil), nil, nil)

	ctx := postCtx(`{"title":"call dentist","deadline":"2024-01-10T10:00:00Z","reminder_offset":"15m0s"}`)
	h.CreateTask(ctx)

	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "call dentist")
}
