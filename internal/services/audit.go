package services

import (
	"context"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/internal/infrastructure/journal"
	"github.com/crowdvault/backend/usecase"
)

// AuditRecorder adapts the BoltDB journal to the engine's recorder port.
type AuditRecorder struct {
	store *journal.Store
}

func NewAuditRecorder(store *journal.Store) *AuditRecorder {
	return &AuditRecorder{store: store}
}

func (r *AuditRecorder) RecordAction(_ context.Context, record domain.ActionRecord) error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Append(record)
}

var _ usecase.ActionRecorder = (*AuditRecorder)(nil)
