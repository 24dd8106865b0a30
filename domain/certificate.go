package domain

import "time"

// CertificateRoundSpan is the id block reserved per round: certificate ids are
// round*CertificateRoundSpan + index, so integer division recovers the round.
const CertificateRoundSpan = 1_000_000

// Burn reasons recorded on a destroyed certificate.
const (
	BurnReasonRefund    = "refund"
	BurnReasonEmergency = "emergency"
)

// Certificate is a unique, burnable unit of ownership issued against a
// specific round. The purchase price and commission snapshot are immutable;
// the live campaign rate is never consulted for historical calculations.
type Certificate struct {
	ID                 int64      `json:"id"`
	CampaignID         string     `json:"campaign_id"`
	OwnerID            string     `json:"owner_id"`
	Round              int        `json:"round"`
	GrossPrice         int64      `json:"gross_price"`
	CommissionSnapshot int64      `json:"commission_snapshot"`
	IssuedAt           time.Time  `json:"issued_at"`
	Burned             bool       `json:"burned"`
	BurnedAt           *time.Time `json:"burned_at,omitempty"`
	BurnReason         string     `json:"burn_reason,omitempty"`
}

// CertificateID derives the deterministic id for the index-th certificate of a
// round. Indexes start at 1.
func CertificateID(round int, index int64) int64 {
	return int64(round)*CertificateRoundSpan + index
}

// CertificateRoundOf recovers the round number encoded in a certificate id.
func CertificateRoundOf(id int64) int {
	return int(id / CertificateRoundSpan)
}

// IssueCertificate mints one certificate for an investor.
func IssueCertificate(campaignID, ownerID string, round int, index, gross, rateSnapshot int64, now time.Time) Certificate {
	return Certificate{
		ID:                 CertificateID(round, index),
		CampaignID:         campaignID,
		OwnerID:            ownerID,
		Round:              round,
		GrossPrice:         gross,
		CommissionSnapshot: rateSnapshot,
		IssuedAt:           now,
	}
}

// RefundValue is the amount paid out when the certificate is redeemed through
// any path. Commission is never refunded.
func (c *Certificate) RefundValue() int64 {
	return NetAmount(c.GrossPrice, c.CommissionSnapshot)
}

// Burn destroys the certificate exactly once. Refund and emergency withdrawal
// are mutually exclusive entry points to this same operation.
func (c *Certificate) Burn(reason string, now time.Time) error {
	if c.Burned {
		return ErrAlreadyRedeemed
	}
	c.Burned = true
	at := now
	c.BurnedAt = &at
	c.BurnReason = reason
	return nil
}

// LedgerEntry aggregates an investor's position in one round. It is derived
// from certificates, never stored.
type LedgerEntry struct {
	Round          int     `json:"round"`
	Amount         int64   `json:"amount"`
	Shares         int64   `json:"shares"`
	CertificateIDs []int64 `json:"certificate_ids"`
}

// BuildLedger folds certificates into per-round entries, active ones only.
func BuildLedger(certs []Certificate) []LedgerEntry {
	byRound := make(map[int]*LedgerEntry)
	var order []int
	for _, c := range certs {
		if c.Burned {
			continue
		}
		entry, ok := byRound[c.Round]
		if !ok {
			entry = &LedgerEntry{Round: c.Round}
			byRound[c.Round] = entry
			order = append(order, c.Round)
		}
		entry.Amount += c.GrossPrice
		entry.Shares++
		entry.CertificateIDs = append(entry.CertificateIDs, c.ID)
	}
	entries := make([]LedgerEntry, 0, len(order))
	for _, round := range order {
		entries = append(entries, *byRound[round])
	}
	return entries
}
