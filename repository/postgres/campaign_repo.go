package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
)

type campaignRepository struct {
	db querier
}

// NewCampaignRepository returns a Postgres-backed CampaignRepository.
func NewCampaignRepository(db querier) repository.CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	const query = `
	SELECT id, creator_id, treasury_id, commission_percent, current_round,
	       certificates_issued, metadata_cid, created_at, updated_at
	FROM campaigns
	WHERE id = $1
	`
	return scanCampaign(r.db.QueryRow(ctx, query, id))
}

func (r *campaignRepository) List(ctx context.Context, limit, offset int) ([]domain.Campaign, error) {
	const query = `
	SELECT id, creator_id, treasury_id, commission_percent, current_round,
	       certificates_issued, metadata_cid, created_at, updated_at
	FROM campaigns
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *campaign)
	}
	return campaigns, rows.Err()
}

func (r *campaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	if campaign == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO campaigns (id, creator_id, treasury_id, commission_percent, current_round,
	                       certificates_issued, metadata_cid, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		campaign.ID,
		campaign.CreatorID,
		campaign.TreasuryID,
		campaign.CommissionPercent,
		campaign.CurrentRound,
		campaign.CertificatesIssued,
		campaign.MetadataCID,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	return err
}

func (r *campaignRepository) Update(ctx context.Context, campaign *domain.Campaign) error {
	if campaign == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE campaigns
	SET commission_percent = $2,
	    current_round = $3,
	    certificates_issued = $4,
	    metadata_cid = $5,
	    updated_at = $6
	WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		campaign.ID,
		campaign.CommissionPercent,
		campaign.CurrentRound,
		campaign.CertificatesIssued,
		campaign.MetadataCID,
		campaign.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var campaign domain.Campaign
	if err := row.Scan(
		&campaign.ID,
		&campaign.CreatorID,
		&campaign.TreasuryID,
		&campaign.CommissionPercent,
		&campaign.CurrentRound,
		&campaign.CertificatesIssued,
		&campaign.MetadataCID,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}
