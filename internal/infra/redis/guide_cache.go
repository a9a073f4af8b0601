package redis

import (
	"context"
	"errors"
	"time"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/infra/metrics"
)

const guideKeyPrefix = "study_guide:"

// GuideCache keeps completed combined study guides keyed by job ID so
// result reads for finished jobs skip Postgres while the entry is warm.
type GuideCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewGuideCache(client RedisClient, ttl time.Duration) *GuideCache {
	return &GuideCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *GuideCache) Store(ctx context.Context, jobID, combinedMD string) error {
	return c.client.Set(ctx, guideKeyPrefix+jobID, combinedMD, c.ttl)
}

func (c *GuideCache) Get(ctx context.Context, jobID string) (string, error) {
	val, err := c.client.Get(ctx, guideKeyPrefix+jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncCache("miss")
		} else {
			metrics.IncCache("error")
		}
		return "", err
	}
	metrics.IncCache("hit")
	return val, nil
}

func (c *GuideCache) Delete(ctx context.Context, jobID string) error {
	return c.client.Del(ctx, guideKeyPrefix+jobID)
}
