package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/api/transport"
	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/pkg/httpcontext"
	"github.com/fastygo/lifetrack/usecase/goals"
	identityUC "github.com/fastygo/lifetrack/usecase/identity"
)

type ProfileHandler struct {
	baseHandler
	bridge   *identityUC.Bridge
	sessions Sessions
}

func NewProfileHandler(bridge *identityUC.Bridge, sessions Sessions, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		bridge:      bridge,
		sessions:    sessions,
	}
}

// @Summary Current profile
// @Tags profile
// @Success 200 {object} transport.Envelope
// @Router /api/v1/me [get]
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.bridge.CurrentUser(stdCtx, httpcontext.ClaimsFromContext(stdCtx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Identity claims
// @Tags profile
// @Router /api/v1/me/claims [get]
func (h *ProfileHandler) GetClaims(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.bridge.Claims(stdCtx, httpcontext.ClaimsFromContext(stdCtx)))
}

// @Summary Rename profile
// @Tags profile
// @Accept json
// @Produce json
// @Router /api/v1/me [put]
func (h *ProfileHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	var req transport.ProfileUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || strings.TrimSpace(req.Username) == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var user domain.User
	err := h.sessions.With(stdCtx, identity, func(e *goals.Engine) error {
		user = e.CurrentUser()
		user.Username = strings.TrimSpace(req.Username)
		return e.UpdateUser(stdCtx, user)
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Delete stored data
// @Tags profile
// @Router /api/v1/me/data [delete]
func (h *ProfileHandler) PurgeData(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var user domain.User
	err := h.sessions.With(stdCtx, identity, func(e *goals.Engine) error {
		if err := e.Purge(stdCtx); err != nil {
			return err
		}
		user = e.CurrentUser()
		return nil
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}
