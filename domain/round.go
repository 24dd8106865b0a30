package domain

import "time"

// Round is one pricing/target window of a campaign. Rounds are retained forever
// once created; finalization flips them inactive but keeps the audited totals.
type Round struct {
	CampaignID   string     `json:"campaign_id"`
	Number       int        `json:"number"`
	SharePrice   int64      `json:"share_price"`
	TargetAmount int64      `json:"target_amount"`
	FundsRaised  int64      `json:"funds_raised"`
	SharesSold   int64      `json:"shares_sold"`
	// NetRetained tracks what the ledger actually kept after forwarding
	// commission, so escrow can never lock more than was retained.
	NetRetained int64 `json:"net_retained"`
	// IssuedCount is monotonic: refunds decrement SharesSold but certificate
	// indexes within a round are never reused.
	IssuedCount int64      `json:"issued_count"`
	EndTime     time.Time  `json:"end_time"`
	Active      bool       `json:"active"`
	Finalized   bool       `json:"finalized"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewRound creates round `number` for a campaign. The caller guarantees the
// previous round (if any) is finalized.
func NewRound(campaignID string, number int, target, price int64, duration time.Duration, now time.Time) (*Round, error) {
	if campaignID == "" || number < 1 {
		return nil, ErrInvalidPayload
	}
	if target <= 0 || price <= 0 || duration <= 0 {
		return nil, ErrInvalidParameters
	}
	return &Round{
		CampaignID:   campaignID,
		Number:       number,
		SharePrice:   price,
		TargetAmount: target,
		EndTime:      now.Add(duration),
		Active:       true,
		CreatedAt:    now,
	}, nil
}

// RecordPurchase applies an exact-payment purchase of `shares` units. Payment
// must equal shares*price; there are no partial fills and no change-making.
func (r *Round) RecordPurchase(shares, payment, netRetained int64, now time.Time) error {
	if shares <= 0 {
		return ErrInvalidParameters
	}
	if !r.Active || r.Finalized {
		return ErrRoundNotActive
	}
	if now.After(r.EndTime) {
		return ErrRoundExpired
	}
	if payment != shares*r.SharePrice {
		return ErrInsufficientPayment
	}
	r.FundsRaised += payment
	r.SharesSold += shares
	r.NetRetained += netRetained
	r.IssuedCount += shares
	return nil
}

// RecordRefund reverses one certificate's contribution while the round is
// still active. Finalized rounds keep their totals untouched.
func (r *Round) RecordRefund(gross, net int64) {
	r.FundsRaised -= gross
	r.SharesSold--
	r.NetRetained -= net
}

// FinalizeEligible reports whether the round may be finalized right now.
func (r *Round) FinalizeEligible(now time.Time) bool {
	if r == nil || r.Finalized {
		return false
	}
	return r.FundsRaised >= r.TargetAmount || !now.Before(r.EndTime)
}

// Finalize closes the round. Finalization is a distinct explicit action so the
// purchase write path stays small and auditable.
func (r *Round) Finalize(now time.Time) error {
	if r.Finalized {
		return ErrAlreadyFinalized
	}
	if !r.FinalizeEligible(now) {
		return ErrNotEligible
	}
	r.Active = false
	r.Finalized = true
	at := now
	r.FinalizedAt = &at
	return nil
}
