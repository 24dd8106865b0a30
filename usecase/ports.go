package usecase

import (
	"context"

	"github.com/crowdvault/backend/domain"
)

// ActionRecorder appends mutating engine actions to the audit journal. Use
// cases treat recorder failures as soft: the mutation already committed, the
// missing journal line is logged and life goes on.
type ActionRecorder interface {
	RecordAction(ctx context.Context, record domain.ActionRecord) error
}

// EventPublisher emits ledger facts for downstream consumers. Optional; a nil
// publisher means no stream is configured.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// SummaryCache holds the read-surface campaign summary. Cache failures are
// never surfaced to callers; the source of truth is always the repositories.
type SummaryCache interface {
	Get(ctx context.Context, campaignID string) (*domain.CampaignSummary, error)
	Set(ctx context.Context, summary *domain.CampaignSummary) error
	Invalidate(ctx context.Context, campaignID string) error
}
