package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
)

type daoStateRepository struct {
	db querier
}

// NewDAOStateRepository returns a Postgres-backed DAOStateRepository.
func NewDAOStateRepository(db querier) repository.DAOStateRepository {
	return &daoStateRepository{db: db}
}

func (r *daoStateRepository) Get(ctx context.Context, campaignID string) (*domain.DAOState, error) {
	const query = `
	SELECT campaign_id, phase, waiting_since, scheduled_at, event_ref,
	       event_started_at, event_ended_at, exchange_ends_at, emergency_at, updated_at
	FROM dao_states
	WHERE campaign_id = $1
	`
	var state domain.DAOState
	if err := r.db.QueryRow(ctx, query, campaignID).Scan(
		&state.CampaignID,
		&state.Phase,
		&state.WaitingSince,
		&state.ScheduledAt,
		&state.EventRef,
		&state.EventStartedAt,
		&state.EventEndedAt,
		&state.ExchangeEndsAt,
		&state.EmergencyAt,
		&state.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	return &state, nil
}

func (r *daoStateRepository) Create(ctx context.Context, state *domain.DAOState) error {
	if state == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO dao_states (campaign_id, phase, waiting_since, scheduled_at, event_ref,
	                        event_started_at, event_ended_at, exchange_ends_at, emergency_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		state.CampaignID,
		state.Phase,
		state.WaitingSince,
		state.ScheduledAt,
		state.EventRef,
		state.EventStartedAt,
		state.EventEndedAt,
		state.ExchangeEndsAt,
		state.EmergencyAt,
		state.UpdatedAt,
	)
	return err
}

func (r *daoStateRepository) Update(ctx context.Context, state *domain.DAOState) error {
	if state == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE dao_states
	SET phase = $2,
	    waiting_since = $3,
	    scheduled_at = $4,
	    event_ref = $5,
	    event_started_at = $6,
	    event_ended_at = $7,
	    exchange_ends_at = $8,
	    emergency_at = $9,
	    updated_at = $10
	WHERE campaign_id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		state.CampaignID,
		state.Phase,
		state.WaitingSince,
		state.ScheduledAt,
		state.EventRef,
		state.EventStartedAt,
		state.EventEndedAt,
		state.ExchangeEndsAt,
		state.EmergencyAt,
		state.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}
