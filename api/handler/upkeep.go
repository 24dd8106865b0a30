package handler

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/api/transport"
	"github.com/crowdvault/backend/pkg/httpcontext"
	"github.com/crowdvault/backend/usecase/upkeep"
)

// UpkeepHandler exposes the lifecycle trigger. Anyone may call it; the
// engine revalidates preconditions, so the worst a caller can do is perform
// lifecycle work early.
type UpkeepHandler struct {
	baseHandler
	upkeep *upkeep.UseCase
}

func NewUpkeepHandler(adapter *httpcontext.Adapter, uc *upkeep.UseCase, logger *zap.Logger) *UpkeepHandler {
	return &UpkeepHandler{
		baseHandler: newBaseHandler(adapter, logger),
		upkeep:      uc,
	}
}

func (h *UpkeepHandler) Perform(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.UpkeepRequest
	if len(ctx.PostBody()) > 0 {
		if err := h.decodeBody(ctx, &req); err != nil {
			h.respondError(ctx, err)
			return
		}
	}

	campaignID := h.pathParam(ctx, "id")
	var (
		result *upkeep.DueResult
		err    error
	)
	if req.DryRun {
		result, err = h.upkeep.CheckDue(stdCtx, campaignID)
	} else {
		result, err = h.upkeep.PerformDue(stdCtx, campaignID)
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, result)
}
