package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/momentumhq/backend/api/transport"
	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/pkg/httpcontext"
	habitUC "github.com/momentumhq/backend/usecase/habit"
)

type HabitHandler struct {
	baseHandler
	uc *habitUC.UseCase
}

func NewHabitHandler(uc *habitUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List habits
// @Tags habits
// @Router /api/v1/habits [get]
func (h *HabitHandler) GetHabits(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	habits, err := h.uc.ListHabits(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, habits)
}

// @Summary Create habit
// @Tags habits
// @Router /api/v1/habits [post]
func (h *HabitHandler) CreateHabit(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.HabitRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	habit, err := h.uc.CreateHabit(stdCtx, &domain.Habit{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, habit)
}

// @Summary Toggle a habit's mark for a day
// @Tags habits
// @Router /api/v1/habits/{id}/toggle [post]
func (h *HabitHandler) ToggleHabit(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing habit id", nil))
		return
	}

	var req transport.HabitToggleRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
			return
		}
	}

	var day domain.Day
	if req.Date != "" {
		parsed, err := domain.ParseDay(req.Date)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid date", nil))
			return
		}
		day = parsed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	habit, err := h.uc.ToggleCompletion(stdCtx, userID, id, day)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, habit)
}

// @Summary Trailing 7-day habit completion chart
// @Tags habits
// @Router /api/v1/habits/stats [get]
func (h *HabitHandler) GetStats(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary Delete habit
// @Tags habits
// @Router /api/v1/habits/{id} [delete]
func (h *HabitHandler) DeleteHabit(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing habit id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteHabit(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
