package repository

import (
	"context"

	"github.com/crowdvault/backend/domain"
)

type DAOStateRepository interface {
	Get(ctx context.Context, campaignID string) (*domain.DAOState, error)
	Create(ctx context.Context, state *domain.DAOState) error
	Update(ctx context.Context, state *domain.DAOState) error
}
