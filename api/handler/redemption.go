package handler

import (
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/api/transport"
	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/pkg/httpcontext"
	"github.com/crowdvault/backend/usecase/redemption"
)

// RedemptionHandler serves refund eligibility checks, refunds, and the
// emergency withdrawal.
type RedemptionHandler struct {
	baseHandler
	redemption *redemption.UseCase
}

func NewRedemptionHandler(adapter *httpcontext.Adapter, uc *redemption.UseCase, logger *zap.Logger) *RedemptionHandler {
	return &RedemptionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		redemption:  uc,
	}
}

func (h *RedemptionHandler) CanRefund(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	certID, err := strconv.ParseInt(string(ctx.QueryArgs().Peek("certificate_id")), 10, 64)
	if err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	eligibility, err := h.redemption.CanRefund(stdCtx, h.pathParam(ctx, "id"), certID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, eligibility)
}

func (h *RedemptionHandler) Refund(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.RefundRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	receipt, err := h.redemption.Refund(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx), req.CertificateID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, receipt)
}

func (h *RedemptionHandler) EmergencyWithdraw(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	receipt, err := h.redemption.EmergencyWithdraw(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, receipt)
}
