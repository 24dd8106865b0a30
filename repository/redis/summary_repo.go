package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crowdvault/backend/domain"
)

const summaryKeyPrefix = "summary:"

// SummaryRepository caches campaign summaries in Redis. A miss is not an
// error to callers of the engine; they fall through to the repositories.
type SummaryRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryRepository(client *redis.Client, ttl time.Duration) *SummaryRepository {
	return &SummaryRepository{
		client: client,
		ttl:    ttl,
	}
}

func summaryKey(campaignID string) string {
	return summaryKeyPrefix + campaignID
}

func (r *SummaryRepository) Get(ctx context.Context, campaignID string) (*domain.CampaignSummary, error) {
	data, err := r.client.Get(ctx, summaryKey(campaignID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get summary from redis: %w", err)
	}

	var summary domain.CampaignSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

func (r *SummaryRepository) Set(ctx context.Context, summary *domain.CampaignSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := r.client.Set(ctx, summaryKey(summary.Campaign.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store summary in redis: %w", err)
	}
	return nil
}

func (r *SummaryRepository) Invalidate(ctx context.Context, campaignID string) error {
	if err := r.client.Del(ctx, summaryKey(campaignID)).Err(); err != nil {
		return fmt.Errorf("failed to delete summary from redis: %w", err)
	}
	return nil
}
