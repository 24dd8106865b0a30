package repository

import (
	"context"

	"github.com/crowdvault/backend/domain"
)

type RoundRepository interface {
	Get(ctx context.Context, campaignID string, number int) (*domain.Round, error)
	// Current returns the highest-numbered round, or domain.ErrRoundNotFound
	// when the campaign has not started one yet.
	Current(ctx context.Context, campaignID string) (*domain.Round, error)
	List(ctx context.Context, campaignID string) ([]domain.Round, error)
	Create(ctx context.Context, round *domain.Round) error
	Update(ctx context.Context, round *domain.Round) error
}
