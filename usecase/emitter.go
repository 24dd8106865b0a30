package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/crowdvault/backend/domain"
)

// Emitter fans successful mutations out to the audit journal, the ledger
// event stream, and the summary cache. All three are best-effort side
// channels: the mutation has already committed, so failures are logged and
// swallowed.
type Emitter struct {
	Audit  ActionRecorder
	Events EventPublisher
	Cache  SummaryCache
	Clock  func() time.Time
	Logger *zap.Logger
}

func NewEmitter(audit ActionRecorder, events EventPublisher, cache SummaryCache, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		Audit:  audit,
		Events: events,
		Cache:  cache,
		Clock:  time.Now,
		Logger: logger,
	}
}

func (e *Emitter) now() time.Time {
	if e.Clock != nil {
		return e.Clock().UTC()
	}
	return time.Now().UTC()
}

// Record appends one audit journal line.
func (e *Emitter) Record(ctx context.Context, campaignID, actorID, action, entity string, payload any) {
	if e == nil || e.Audit == nil {
		return
	}
	data, _ := json.Marshal(payload)
	err := e.Audit.RecordAction(ctx, domain.ActionRecord{
		CampaignID: campaignID,
		ActorID:    actorID,
		Action:     action,
		Entity:     entity,
		Payload:    data,
		At:         e.now(),
	})
	if err != nil {
		e.Logger.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}

// Publish emits one ledger event.
func (e *Emitter) Publish(ctx context.Context, eventType, campaignID string, payload any) {
	if e == nil || e.Events == nil {
		return
	}
	data, _ := json.Marshal(payload)
	err := e.Events.Publish(ctx, domain.LedgerEvent{
		Type:       eventType,
		CampaignID: campaignID,
		Payload:    data,
		At:         e.now(),
	})
	if err != nil {
		e.Logger.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}

// Invalidate drops the cached campaign summary after a mutation.
func (e *Emitter) Invalidate(ctx context.Context, campaignID string) {
	if e == nil || e.Cache == nil {
		return
	}
	if err := e.Cache.Invalidate(ctx, campaignID); err != nil {
		e.Logger.Warn("summary cache invalidation failed", zap.String("campaign_id", campaignID), zap.Error(err))
	}
}
