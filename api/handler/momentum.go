package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/momentumhq/backend/api/transport"
	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/pkg/httpcontext"
	momentumUC "github.com/momentumhq/backend/usecase/momentum"
	taskUC "github.com/momentumhq/backend/usecase/task"
)

type MomentumHandler struct {
	baseHandler
	engine *momentumUC.Engine
	tasks  *taskUC.UseCase
}

func NewMomentumHandler(engine *momentumUC.Engine, tasks *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *MomentumHandler {
	return &MomentumHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		tasks:       tasks,
	}
}

// @Summary Momentum graph metrics
// @Tags momentum
// @Router /api/v1/momentum/graphs [get]
func (h *MomentumHandler) GetGraphs(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	metrics, err := h.engine.GetGraphMetrics(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, metrics)
}

// @Summary Report a task completion to the momentum engine
// @Tags momentum
// @Router /api/v1/momentum/update [post]
func (h *MomentumHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.MomentumUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.TaskID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "task_id is required", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.tasks.GetTask(stdCtx, req.TaskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if task.UserID != userID {
		h.respondError(ctx, domain.ErrUnauthorized)
		return
	}

	user, err := h.engine.UpdateMomentum(stdCtx, userID, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if user == nil {
		// Aggregate apply was buffered for replay; the stat increment is
		// already durable.
		h.respondSuccess(ctx, http.StatusAccepted, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}
