package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/api/transport"
	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/pkg/httpcontext"
	"github.com/fastygo/lifetrack/usecase/goals"
)

type GoalsHandler struct {
	baseHandler
	sessions Sessions
}

func NewGoalsHandler(sessions Sessions, adapter *httpcontext.Adapter, logger *zap.Logger) *GoalsHandler {
	return &GoalsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		sessions:    sessions,
	}
}

// @Summary List categories
// @Tags goals
// @Router /api/v1/categories [get]
func (h *GoalsHandler) ListCategories(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var categories []domain.Category
	err := h.sessions.With(stdCtx, identity, func(e *goals.Engine) error {
		categories = e.Categories()
		return nil
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, categories)
}

// @Summary Get category
// @Tags goals
// @Router /api/v1/categories/{categoryID} [get]
func (h *GoalsHandler) GetCategory(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(ctx, "categoryID")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var category domain.Category
	err := h.sessions.With(stdCtx, identity, func(e *goals.Engine) error {
		var found bool
		category, found = e.Category(categoryID)
		if !found {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, category)
}

// @Summary Add goal
// @Tags goals
// @Accept json
// @Router /api/v1/categories/{categoryID}/goals [post]
func (h *GoalsHandler) AddGoal(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(ctx, "categoryID")
	if !ok {
		return
	}

	var req transport.GoalRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || strings.TrimSpace(req.Description) == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var goal *domain.Goal
	err := h.sessions.With(stdCtx, identity, func(e *goals.Engine) error {
		var err error
		goal, err = e.AddGoal(stdCtx, categoryID, strings.TrimSpace(req.Description), domain.ParseDifficulty(req.Difficulty))
		if err == nil && goal == nil {
			return domain.ErrCategoryNotFound
		}
		return err
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, goal)
}

// @Summary Complete goal
// @Tags goals
// @Router /api/v1/categories/{categoryID}/goals/{goalID}/complete [post]
func (h *GoalsHandler) CompleteGoal(ctx *fasthttp.RequestCtx) {
	h.goalAction(ctx, func(stdCtx context.Context, e *goals.Engine, categoryID, goalID int) interface{} {
		r := e.CompleteGoal(stdCtx, categoryID, goalID)
		return transport.CompletionResponse{
			Applied:      r.Applied,
			GoalPoints:   r.GoalPoints,
			StreakBonus:  r.StreakBonus,
			BalanceBonus: r.BalanceBonus,
			LeveledUp:    r.LeveledUp,
			Level:        r.Level,
			TotalPoints:  r.TotalPoints,
		}
	})
}

// @Summary Reset goal
// @Tags goals
// @Router /api/v1/categories/{categoryID}/goals/{goalID}/reset [post]
func (h *GoalsHandler) ResetGoal(ctx *fasthttp.RequestCtx) {
	h.goalAction(ctx, func(stdCtx context.Context, e *goals.Engine, categoryID, goalID int) interface{} {
		changed := e.ResetGoal(stdCtx, categoryID, goalID)
		return transport.ResetResponse{Reset: changed, TotalPoints: e.CurrentUser().TotalPoints}
	})
}

func (h *GoalsHandler) goalAction(ctx *fasthttp.RequestCtx, action func(stdCtx context.Context, e *goals.Engine, categoryID, goalID int) interface{}) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(ctx, "categoryID")
	if !ok {
		return
	}
	goalID, ok := h.pathID(ctx, "goalID")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var result interface{}
	err := h.sessions.With(stdCtx, identity, func(e *goals.Engine) error {
		category, found := e.Category(categoryID)
		if !found {
			return domain.ErrCategoryNotFound
		}
		if category.Goal(goalID) == nil {
			return domain.ErrGoalNotFound
		}
		result = action(stdCtx, e, categoryID, goalID)
		return nil
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}
