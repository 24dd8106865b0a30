package handler

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/api/transport"
	"github.com/crowdvault/backend/pkg/httpcontext"
	"github.com/crowdvault/backend/usecase/dao"
)

// DAOHandler serves the lifecycle state and its founder-driven transitions.
type DAOHandler struct {
	baseHandler
	dao *dao.UseCase
}

func NewDAOHandler(adapter *httpcontext.Adapter, uc *dao.UseCase, logger *zap.Logger) *DAOHandler {
	return &DAOHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dao:         uc,
	}
}

func (h *DAOHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dao.GetState(stdCtx, h.pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, state)
}

func (h *DAOHandler) Schedule(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.ScheduleLiveRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	state, err := h.dao.ScheduleLiveEvent(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx), req.At, req.EventRef)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, state)
}

func (h *DAOHandler) Start(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dao.StartLiveEvent(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, state)
}

func (h *DAOHandler) End(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dao.EndLiveEvent(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, state)
}

func (h *DAOHandler) Emergency(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	campaignID := h.pathParam(ctx, "id")
	if err := h.dao.EnableEmergency(stdCtx, campaignID); err != nil {
		h.respondError(ctx, err)
		return
	}

	state, err := h.dao.GetState(stdCtx, campaignID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, state)
}
