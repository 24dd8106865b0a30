package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
)

type escrowRepository struct {
	db querier
}

// NewEscrowRepository returns a Postgres-backed EscrowRepository.
func NewEscrowRepository(db querier) repository.EscrowRepository {
	return &escrowRepository{db: db}
}

const escrowColumns = `campaign_id, round, amount, release_at, released, released_at, created_at`

func (r *escrowRepository) Get(ctx context.Context, campaignID string, round int) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE campaign_id = $1 AND round = $2`
	return scanEscrow(r.db.QueryRow(ctx, query, campaignID, round))
}

func (r *escrowRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE campaign_id = $1 ORDER BY round`
	rows, err := r.db.Query(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var escrows []domain.Escrow
	for rows.Next() {
		escrow, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		escrows = append(escrows, *escrow)
	}
	return escrows, rows.Err()
}

func (r *escrowRepository) Create(ctx context.Context, escrow *domain.Escrow) error {
	if escrow == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO escrows (campaign_id, round, amount, release_at, released, released_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		escrow.CampaignID,
		escrow.Round,
		escrow.Amount,
		escrow.ReleaseAt,
		escrow.Released,
		escrow.ReleasedAt,
		escrow.CreatedAt,
	)
	return err
}

func (r *escrowRepository) Update(ctx context.Context, escrow *domain.Escrow) error {
	if escrow == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE escrows
	SET released = $3,
	    released_at = $4
	WHERE campaign_id = $1 AND round = $2
	`
	tag, err := r.db.Exec(ctx, query,
		escrow.CampaignID,
		escrow.Round,
		escrow.Released,
		escrow.ReleasedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEscrowNotFound
	}
	return nil
}

func scanEscrow(row rowScanner) (*domain.Escrow, error) {
	var escrow domain.Escrow
	if err := row.Scan(
		&escrow.CampaignID,
		&escrow.Round,
		&escrow.Amount,
		&escrow.ReleaseAt,
		&escrow.Released,
		&escrow.ReleasedAt,
		&escrow.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEscrowNotFound
		}
		return nil, err
	}
	return &escrow, nil
}
