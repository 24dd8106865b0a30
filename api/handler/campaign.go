package handler

import (
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/api/transport"
	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/internal/infrastructure/journal"
	"github.com/crowdvault/backend/pkg/httpcontext"
	"github.com/crowdvault/backend/usecase/funding"
)

// CampaignHandler serves campaign creation, the summary view, commission
// updates, and the audit journal read.
type CampaignHandler struct {
	baseHandler
	funding           *funding.UseCase
	journal           *journal.Store
	defaultCommission int64
}

func NewCampaignHandler(adapter *httpcontext.Adapter, uc *funding.UseCase, jrnl *journal.Store, defaultCommission int64, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		baseHandler:       newBaseHandler(adapter, logger),
		funding:           uc,
		journal:           jrnl,
		defaultCommission: defaultCommission,
	}
}

func (h *CampaignHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CreateCampaignRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	commission := h.defaultCommission
	if req.CommissionPercent != nil {
		commission = *req.CommissionPercent
	}

	campaign, err := h.funding.CreateCampaign(stdCtx, domain.CreateCampaignInput{
		CreatorID:         h.callerID(stdCtx),
		TreasuryID:        req.TreasuryID,
		CommissionPercent: commission,
		MetadataCID:       req.MetadataCID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusCreated, campaign)
}

func (h *CampaignHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.funding.CampaignSummary(stdCtx, h.pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, summary)
}

func (h *CampaignHandler) UpdateCommission(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CommissionRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	campaignID := h.pathParam(ctx, "id")
	if err := h.funding.UpdateCommissionRate(stdCtx, campaignID, h.callerID(stdCtx), req.Percent); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, map[string]int64{"commission_percent": req.Percent})
}

func (h *CampaignHandler) Journal(ctx *fasthttp.RequestCtx) {
	limit := 50
	if raw := string(ctx.QueryArgs().Peek("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := h.journal.ByCampaign(h.pathParam(ctx, "id"), limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, records)
}
