package domain

import (
	"strings"
	"time"
)

// Campaign is the aggregate root of a fundraising ledger. It carries the
// identities money moves between, the live commission configuration, and the
// running counters round transitions depend on. Campaigns are never destroyed.
type Campaign struct {
	ID                 string    `json:"id"`
	CreatorID          string    `json:"creator_id"`
	TreasuryID         string    `json:"treasury_id"`
	CommissionPercent  int64     `json:"commission_percent"`
	CurrentRound       int       `json:"current_round"`
	CertificatesIssued int64     `json:"certificates_issued"`
	MetadataCID        string    `json:"metadata_cid,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreateCampaignInput describes the data required to launch a campaign.
type CreateCampaignInput struct {
	CreatorID         string
	TreasuryID        string
	CommissionPercent int64
	MetadataCID       string
}

// NewCampaign validates the input and builds a campaign with no rounds yet.
func NewCampaign(id string, input CreateCampaignInput, now time.Time) (*Campaign, error) {
	input.CreatorID = strings.TrimSpace(input.CreatorID)
	input.TreasuryID = strings.TrimSpace(input.TreasuryID)
	if id == "" || input.CreatorID == "" || input.TreasuryID == "" {
		return nil, ErrInvalidPayload
	}
	if input.CommissionPercent < 0 || input.CommissionPercent > 100 {
		return nil, ErrInvalidParameters
	}
	return &Campaign{
		ID:                id,
		CreatorID:         input.CreatorID,
		TreasuryID:        input.TreasuryID,
		CommissionPercent: input.CommissionPercent,
		MetadataCID:       input.MetadataCID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// SetCommissionRate updates the live platform rate. Certificates already issued
// keep their snapshot; only future purchases observe the new rate.
func (c *Campaign) SetCommissionRate(percent int64, now time.Time) error {
	if percent < 0 || percent > 100 {
		return ErrInvalidParameters
	}
	c.CommissionPercent = percent
	c.UpdatedAt = now
	return nil
}

// IsFounder reports whether the caller is the campaign creator.
func (c *Campaign) IsFounder(callerID string) bool {
	return c != nil && callerID != "" && c.CreatorID == callerID
}
