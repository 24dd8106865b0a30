package handler

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/api/transport"
	"github.com/crowdvault/backend/pkg/httpcontext"
	"github.com/crowdvault/backend/usecase/funding"
)

// FundingHandler serves round management, purchases, and the investor's
// certificate views.
type FundingHandler struct {
	baseHandler
	funding *funding.UseCase
}

func NewFundingHandler(adapter *httpcontext.Adapter, uc *funding.UseCase, logger *zap.Logger) *FundingHandler {
	return &FundingHandler{
		baseHandler: newBaseHandler(adapter, logger),
		funding:     uc,
	}
}

func (h *FundingHandler) StartRound(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.StartRoundRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	round, err := h.funding.StartRound(
		stdCtx,
		h.pathParam(ctx, "id"),
		h.callerID(stdCtx),
		req.TargetAmount,
		req.SharePrice,
		time.Duration(req.DurationSeconds)*time.Second,
	)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusCreated, round)
}

func (h *FundingHandler) ListRounds(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rounds, err := h.funding.ListRounds(stdCtx, h.pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, rounds)
}

func (h *FundingHandler) Purchase(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.PurchaseRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	receipt, err := h.funding.Purchase(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx), req.Shares, req.Payment)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusCreated, receipt)
}

func (h *FundingHandler) Certificates(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	includeBurned := ctx.QueryArgs().GetBool("include_burned")
	certs, err := h.funding.Certificates(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx), includeBurned)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, certs)
}

func (h *FundingHandler) Ledger(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.funding.InvestorLedger(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, entries)
}
