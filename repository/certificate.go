package repository

import (
	"context"

	"github.com/crowdvault/backend/domain"
)

type CertificateFilter struct {
	CampaignID    string
	OwnerID       string
	Round         int
	IncludeBurned bool
	Limit         int
	Offset        int
}

type CertificateRepository interface {
	Get(ctx context.Context, campaignID string, id int64) (*domain.Certificate, error)
	List(ctx context.Context, filter CertificateFilter) ([]domain.Certificate, error)
	CreateBatch(ctx context.Context, certs []domain.Certificate) error
	Update(ctx context.Context, cert *domain.Certificate) error
	// CountActive is the campaign's total outstanding share count.
	CountActive(ctx context.Context, campaignID string) (int64, error)
	// CountActiveByOwner is a holder's current voting power.
	CountActiveByOwner(ctx context.Context, campaignID, ownerID string) (int64, error)
}
