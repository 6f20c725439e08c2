package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-report/internal/config"
	"github.com/stemsi/exstem-report/internal/model"
)

// SummaryCacheRepository stores computed summaries in Redis, keyed by
// dataset revision and selection.
type SummaryCacheRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSummaryCacheRepository creates a SummaryCacheRepository.
func NewSummaryCacheRepository(rdb *redis.Client, ttl time.Duration) *SummaryCacheRepository {
	return &SummaryCacheRepository{rdb: rdb, ttl: ttl}
}

// GetSummaries returns the cached summaries, or ok=false on a miss.
func (r *SummaryCacheRepository) GetSummaries(ctx context.Context, version string, sel model.Selection) (model.Summaries, bool, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.SummariesKey(version, sel)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Summaries{}, false, nil
	}
	if err != nil {
		return model.Summaries{}, false, fmt.Errorf("get cached summaries: %w", err)
	}

	var sums model.Summaries
	if err := json.Unmarshal(raw, &sums); err != nil {
		return model.Summaries{}, false, fmt.Errorf("decode cached summaries: %w", err)
	}
	return sums, true, nil
}

// SetSummaries caches sums for the selection.
func (r *SummaryCacheRepository) SetSummaries(ctx context.Context, version string, sel model.Selection, sums model.Summaries) error {
	raw, err := json.Marshal(sums)
	if err != nil {
		return fmt.Errorf("encode summaries: %w", err)
	}
	if err := r.rdb.Set(ctx, config.CacheKey.SummariesKey(version, sel), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache summaries: %w", err)
	}
	return nil
}
