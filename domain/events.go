package domain

import (
	"encoding/json"
	"time"
)

// Ledger event types emitted after successful mutations.
const (
	EventCampaignCreated  = "campaign.created"
	EventRoundStarted     = "round.started"
	EventSharesPurchased  = "shares.purchased"
	EventRoundFinalized   = "round.finalized"
	EventCertificateBurnt = "certificate.burned"
	EventPhaseChanged     = "dao.phase_changed"
	EventProposalCreated  = "proposal.created"
	EventVoteCast         = "proposal.vote_cast"
	EventEscrowReleased   = "escrow.released"
)

// LedgerEvent is a fact about the ledger published for downstream consumers.
// The engine never depends on anyone receiving it.
type LedgerEvent struct {
	Type       string          `json:"type"`
	CampaignID string          `json:"campaign_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	At         time.Time       `json:"at"`
}

// ActionRecord is one line of the append-only audit journal: who invoked which
// mutating engine action, against what, with what arguments.
type ActionRecord struct {
	ID         string          `json:"id"`
	CampaignID string          `json:"campaign_id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	Entity     string          `json:"entity"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	At         time.Time       `json:"at"`
}

// CampaignSummary is the cached read-surface view of a campaign.
type CampaignSummary struct {
	Campaign    Campaign  `json:"campaign"`
	Round       *Round    `json:"round,omitempty"`
	Phase       DAOPhase  `json:"phase"`
	Outstanding int64     `json:"outstanding_shares"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
