package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/momentumhq/backend/api/transport"
	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/pkg/httpcontext"
	focusUC "github.com/momentumhq/backend/usecase/focus"
)

type FocusHandler struct {
	baseHandler
	uc *focusUC.UseCase
}

func NewFocusHandler(uc *focusUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *FocusHandler {
	return &FocusHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Record a finished focus session
// @Tags focus
// @Router /api/v1/focus/sessions [post]
func (h *FocusHandler) RecordSession(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.FocusSessionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.RecordSession(stdCtx, userID, req.DurationSeconds, req.Action)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, result)
}

// @Summary Trailing 7-day focus chart and lifetime totals
// @Tags focus
// @Router /api/v1/focus/stats [get]
func (h *FocusHandler) GetStats(ctx *fasthttp.RequestCtx) {
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

// @Summary Clear focus history
// @Tags focus
// @Router /api/v1/focus/sessions [delete]
func (h *FocusHandler) ClearHistory(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.uc.ClearHistory(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"deleted_sessions": deleted})
}
