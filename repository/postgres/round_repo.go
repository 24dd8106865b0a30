package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
)

type roundRepository struct {
	db querier
}

// NewRoundRepository returns a Postgres-backed RoundRepository.
func NewRoundRepository(db querier) repository.RoundRepository {
	return &roundRepository{db: db}
}

const roundColumns = `campaign_id, number, share_price, target_amount, funds_raised,
	shares_sold, net_retained, issued_count, end_time, active, finalized, finalized_at, created_at`

func (r *roundRepository) Get(ctx context.Context, campaignID string, number int) (*domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE campaign_id = $1 AND number = $2`
	return scanRound(r.db.QueryRow(ctx, query, campaignID, number))
}

func (r *roundRepository) Current(ctx context.Context, campaignID string) (*domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE campaign_id = $1 ORDER BY number DESC LIMIT 1`
	return scanRound(r.db.QueryRow(ctx, query, campaignID))
}

func (r *roundRepository) List(ctx context.Context, campaignID string) ([]domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE campaign_id = $1 ORDER BY number`
	rows, err := r.db.Query(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []domain.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *round)
	}
	return rounds, rows.Err()
}

func (r *roundRepository) Create(ctx context.Context, round *domain.Round) error {
	if round == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO rounds (campaign_id, number, share_price, target_amount, funds_raised,
	                    shares_sold, net_retained, issued_count, end_time, active, finalized, finalized_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		round.CampaignID,
		round.Number,
		round.SharePrice,
		round.TargetAmount,
		round.FundsRaised,
		round.SharesSold,
		round.NetRetained,
		round.IssuedCount,
		round.EndTime,
		round.Active,
		round.Finalized,
		round.FinalizedAt,
		round.CreatedAt,
	)
	return err
}

func (r *roundRepository) Update(ctx context.Context, round *domain.Round) error {
	if round == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE rounds
	SET funds_raised = $3,
	    shares_sold = $4,
	    net_retained = $5,
	    issued_count = $6,
	    active = $7,
	    finalized = $8,
	    finalized_at = $9
	WHERE campaign_id = $1 AND number = $2
	`
	tag, err := r.db.Exec(ctx, query,
		round.CampaignID,
		round.Number,
		round.FundsRaised,
		round.SharesSold,
		round.NetRetained,
		round.IssuedCount,
		round.Active,
		round.Finalized,
		round.FinalizedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoundNotFound
	}
	return nil
}

func scanRound(row rowScanner) (*domain.Round, error) {
	var round domain.Round
	if err := row.Scan(
		&round.CampaignID,
		&round.Number,
		&round.SharePrice,
		&round.TargetAmount,
		&round.FundsRaised,
		&round.SharesSold,
		&round.NetRetained,
		&round.IssuedCount,
		&round.EndTime,
		&round.Active,
		&round.Finalized,
		&round.FinalizedAt,
		&round.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}
