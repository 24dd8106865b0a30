package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/crowdvault/backend/api/handler"
)

type Handlers struct {
	Campaign   *apiHandler.CampaignHandler
	Funding    *apiHandler.FundingHandler
	Redemption *apiHandler.RedemptionHandler
	DAO        *apiHandler.DAOHandler
	Governance *apiHandler.GovernanceHandler
	Escrow     *apiHandler.EscrowHandler
	Upkeep     *apiHandler.UpkeepHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Health)

	auth := authMiddleware

	// Campaigns and funding
	r.POST("/api/v1/campaigns", auth(handlers.Campaign.Create))
	r.GET("/api/v1/campaigns/{id}", auth(handlers.Campaign.Get))
	r.PUT("/api/v1/campaigns/{id}/commission", auth(handlers.Campaign.UpdateCommission))
	r.GET("/api/v1/campaigns/{id}/journal", auth(handlers.Campaign.Journal))
	r.POST("/api/v1/campaigns/{id}/rounds", auth(handlers.Funding.StartRound))
	r.GET("/api/v1/campaigns/{id}/rounds", auth(handlers.Funding.ListRounds))
	r.POST("/api/v1/campaigns/{id}/purchase", auth(handlers.Funding.Purchase))
	r.GET("/api/v1/campaigns/{id}/certificates", auth(handlers.Funding.Certificates))
	r.GET("/api/v1/campaigns/{id}/ledger", auth(handlers.Funding.Ledger))

	// Redemption
	r.GET("/api/v1/campaigns/{id}/refund", auth(handlers.Redemption.CanRefund))
	r.POST("/api/v1/campaigns/{id}/refund", auth(handlers.Redemption.Refund))
	r.POST("/api/v1/campaigns/{id}/emergency-withdraw", auth(handlers.Redemption.EmergencyWithdraw))

	// Lifecycle
	r.GET("/api/v1/campaigns/{id}/dao", auth(handlers.DAO.Get))
	r.POST("/api/v1/campaigns/{id}/dao/schedule", auth(handlers.DAO.Schedule))
	r.POST("/api/v1/campaigns/{id}/dao/start", auth(handlers.DAO.Start))
	r.POST("/api/v1/campaigns/{id}/dao/end", auth(handlers.DAO.End))
	r.POST("/api/v1/campaigns/{id}/dao/emergency", auth(handlers.DAO.Emergency))

	// Governance
	r.POST("/api/v1/campaigns/{id}/proposals", auth(handlers.Governance.CreateProposal))
	r.GET("/api/v1/campaigns/{id}/proposals", auth(handlers.Governance.ListProposals))
	r.POST("/api/v1/proposals/{id}/votes", auth(handlers.Governance.CastVote))
	r.GET("/api/v1/proposals/{id}/votes", auth(handlers.Governance.ListVotes))
	r.GET("/api/v1/proposals/{id}/results", auth(handlers.Governance.Results))
	r.POST("/api/v1/proposals/{id}/execute", auth(handlers.Governance.Execute))

	// Escrow
	r.GET("/api/v1/campaigns/{id}/escrows", auth(handlers.Escrow.List))
	r.POST("/api/v1/campaigns/{id}/escrows/{round}/claim", auth(handlers.Escrow.Claim))

	// Lifecycle trigger
	r.POST("/api/v1/campaigns/{id}/upkeep", auth(handlers.Upkeep.Perform))

	return r
}
