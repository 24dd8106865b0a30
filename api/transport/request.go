package transport

import "time"

type CreateCampaignRequest struct {
	TreasuryID        string `json:"treasury_id"`
	CommissionPercent *int64 `json:"commission_percent"`
	MetadataCID       string `json:"metadata_cid"`
}

type CommissionRequest struct {
	Percent int64 `json:"percent"`
}

type StartRoundRequest struct {
	TargetAmount    int64 `json:"target_amount"`
	SharePrice      int64 `json:"share_price"`
	DurationSeconds int64 `json:"duration_seconds"`
}

type PurchaseRequest struct {
	Shares  int64 `json:"shares"`
	Payment int64 `json:"payment"`
}

type RefundRequest struct {
	CertificateID int64 `json:"certificate_id"`
}

type ScheduleLiveRequest struct {
	At       time.Time `json:"at"`
	EventRef string    `json:"event_ref"`
}

type CreateProposalRequest struct {
	Kind            string    `json:"kind"`
	Description     string    `json:"description"`
	Payload         string    `json:"payload"`
	QuorumPercent   int64     `json:"quorum_percent"`
	MajorityPercent int64     `json:"majority_percent"`
	Deadline        time.Time `json:"deadline"`
}

type CastVoteRequest struct {
	Choice  string `json:"choice"`
	Comment string `json:"comment"`
}

type UpkeepRequest struct {
	// DryRun checks what is due without performing it.
	DryRun bool `json:"dry_run"`
}
