package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/pkg/httpcontext"
	"github.com/fastygo/lifetrack/repository"
	activityUC "github.com/fastygo/lifetrack/usecase/activity"
)

type ActivityHandler struct {
	baseHandler
	uc *activityUC.UseCase
}

func NewActivityHandler(uc *activityUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List activity
// @Tags activity
// @Router /api/v1/activity [get]
func (h *ActivityHandler) List(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	filter := repository.ActivityFilter{
		Namespace: identity,
		Kind:      string(ctx.QueryArgs().Peek("kind")),
		Limit:     parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:    parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, events)
}
