package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
)

type certificateRepository struct {
	db querier
}

// NewCertificateRepository returns a Postgres-backed CertificateRepository.
func NewCertificateRepository(db querier) repository.CertificateRepository {
	return &certificateRepository{db: db}
}

const certColumns = `id, campaign_id, owner_id, round, gross_price, commission_snapshot,
	issued_at, burned, burned_at, burn_reason`

func (r *certificateRepository) Get(ctx context.Context, campaignID string, id int64) (*domain.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates WHERE campaign_id = $1 AND id = $2`
	return scanCertificate(r.db.QueryRow(ctx, query, campaignID, id))
}

func (r *certificateRepository) List(ctx context.Context, filter repository.CertificateFilter) ([]domain.Certificate, error) {
	query := `
	SELECT ` + certColumns + `
	FROM certificates
	WHERE campaign_id = $1
	  AND ($2 = '' OR owner_id = $2)
	  AND ($3 = 0 OR round = $3)
	  AND ($4 OR NOT burned)
	ORDER BY id
	LIMIT $5 OFFSET $6
	`
	rows, err := r.db.Query(ctx, query,
		filter.CampaignID,
		filter.OwnerID,
		filter.Round,
		filter.IncludeBurned,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []domain.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, *cert)
	}
	return certs, rows.Err()
}

func (r *certificateRepository) CreateBatch(ctx context.Context, certs []domain.Certificate) error {
	const query = `
	INSERT INTO certificates (id, campaign_id, owner_id, round, gross_price, commission_snapshot,
	                          issued_at, burned, burned_at, burn_reason)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for i := range certs {
		cert := &certs[i]
		if _, err := r.db.Exec(ctx, query,
			cert.ID,
			cert.CampaignID,
			cert.OwnerID,
			cert.Round,
			cert.GrossPrice,
			cert.CommissionSnapshot,
			cert.IssuedAt,
			cert.Burned,
			cert.BurnedAt,
			cert.BurnReason,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *certificateRepository) Update(ctx context.Context, cert *domain.Certificate) error {
	if cert == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE certificates
	SET owner_id = $3,
	    burned = $4,
	    burned_at = $5,
	    burn_reason = $6
	WHERE campaign_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query,
		cert.CampaignID,
		cert.ID,
		cert.OwnerID,
		cert.Burned,
		cert.BurnedAt,
		cert.BurnReason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCertificateNotFound
	}
	return nil
}

func (r *certificateRepository) CountActive(ctx context.Context, campaignID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM certificates WHERE campaign_id = $1 AND NOT burned`
	var count int64
	err := r.db.QueryRow(ctx, query, campaignID).Scan(&count)
	return count, err
}

func (r *certificateRepository) CountActiveByOwner(ctx context.Context, campaignID, ownerID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM certificates WHERE campaign_id = $1 AND owner_id = $2 AND NOT burned`
	var count int64
	err := r.db.QueryRow(ctx, query, campaignID, ownerID).Scan(&count)
	return count, err
}

func scanCertificate(row rowScanner) (*domain.Certificate, error) {
	var cert domain.Certificate
	if err := row.Scan(
		&cert.ID,
		&cert.CampaignID,
		&cert.OwnerID,
		&cert.Round,
		&cert.GrossPrice,
		&cert.CommissionSnapshot,
		&cert.IssuedAt,
		&cert.Burned,
		&cert.BurnedAt,
		&cert.BurnReason,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCertificateNotFound
		}
		return nil, err
	}
	return &cert, nil
}
