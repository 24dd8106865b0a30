package repository

import (
	"context"

	"github.com/crowdvault/backend/domain"
)

type EscrowRepository interface {
	Get(ctx context.Context, campaignID string, round int) (*domain.Escrow, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Escrow, error)
	Create(ctx context.Context, escrow *domain.Escrow) error
	Update(ctx context.Context, escrow *domain.Escrow) error
}
