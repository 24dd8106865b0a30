package handler

import (
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/pkg/httpcontext"
	"github.com/crowdvault/backend/usecase/escrow"
)

// EscrowHandler serves escrow status and founder claims.
type EscrowHandler struct {
	baseHandler
	escrow *escrow.UseCase
}

func NewEscrowHandler(adapter *httpcontext.Adapter, uc *escrow.UseCase, logger *zap.Logger) *EscrowHandler {
	return &EscrowHandler{
		baseHandler: newBaseHandler(adapter, logger),
		escrow:      uc,
	}
}

func (h *EscrowHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	escrows, err := h.escrow.List(stdCtx, h.pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, escrows)
}

func (h *EscrowHandler) Claim(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	round, err := strconv.Atoi(h.pathParam(ctx, "round"))
	if err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	released, err := h.escrow.Claim(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx), round)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, released)
}
