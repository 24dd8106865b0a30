package repository

import (
	"context"

	"github.com/crowdvault/backend/domain"
)

type CampaignRepository interface {
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	Create(ctx context.Context, campaign *domain.Campaign) error
	Update(ctx context.Context, campaign *domain.Campaign) error
	List(ctx context.Context, limit, offset int) ([]domain.Campaign, error)
}
