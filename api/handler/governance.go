package handler

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/api/transport"
	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/pkg/httpcontext"
	"github.com/crowdvault/backend/usecase/governance"
)

// GovernanceHandler serves proposals, voting, and results.
type GovernanceHandler struct {
	baseHandler
	governance *governance.UseCase
}

func NewGovernanceHandler(adapter *httpcontext.Adapter, uc *governance.UseCase, logger *zap.Logger) *GovernanceHandler {
	return &GovernanceHandler{
		baseHandler: newBaseHandler(adapter, logger),
		governance:  uc,
	}
}

func (h *GovernanceHandler) CreateProposal(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CreateProposalRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	proposal, err := h.governance.CreateProposal(stdCtx, h.pathParam(ctx, "id"), h.callerID(stdCtx), governance.CreateProposalInput{
		Kind:            req.Kind,
		Description:     req.Description,
		Payload:         req.Payload,
		QuorumPercent:   req.QuorumPercent,
		MajorityPercent: req.MajorityPercent,
		Deadline:        req.Deadline,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusCreated, proposal)
}

func (h *GovernanceHandler) ListProposals(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	proposals, err := h.governance.ListProposals(stdCtx, h.pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, proposals)
}

func (h *GovernanceHandler) CastVote(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CastVoteRequest
	if err := h.decodeBody(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	vote, err := h.governance.CastVote(stdCtx, h.callerID(stdCtx), h.pathParam(ctx, "id"), domain.VoteChoice(req.Choice), req.Comment)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusCreated, vote)
}

func (h *GovernanceHandler) Results(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	results, err := h.governance.Results(stdCtx, h.pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, results)
}

func (h *GovernanceHandler) Execute(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	proposal, err := h.governance.ExecuteProposal(stdCtx, h.callerID(stdCtx), h.pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, proposal)
}

func (h *GovernanceHandler) ListVotes(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	votes, err := h.governance.ListVotes(stdCtx, h.pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, fasthttp.StatusOK, votes)
}
