package domain

import "time"

// Escrow time-locks the net proceeds of one finalized round. Released at most
// once; the record is retained forever as an audit trail.
type Escrow struct {
	CampaignID string    `json:"campaign_id"`
	Round      int       `json:"round"`
	Amount     int64     `json:"amount"`
	ReleaseAt  time.Time `json:"release_at"`
	Released   bool      `json:"released"`
	ReleasedAt time.Time `json:"released_at,omitzero"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEscrow locks `amount` until finalization time plus the release delay.
func NewEscrow(campaignID string, round int, amount int64, releaseDelay time.Duration, now time.Time) *Escrow {
	return &Escrow{
		CampaignID: campaignID,
		Round:      round,
		Amount:     amount,
		ReleaseAt:  now.Add(releaseDelay),
		CreatedAt:  now,
	}
}

// Claim releases the escrowed amount exactly once, after the lock expires.
func (e *Escrow) Claim(now time.Time) error {
	if e.Released {
		return ErrAlreadyReleased
	}
	if now.Before(e.ReleaseAt) {
		return ErrTooEarly
	}
	e.Released = true
	e.ReleasedAt = now
	return nil
}
