package batches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"recruit-analysis/internal/analyses"
)

const (
	redisKeyPrefix = "batch:progress:"
	// in-flight snapshots expire on their own if a worker dies mid-batch
	defaultInFlightTTL = 24 * time.Hour
)

// RedisStore keeps progress snapshots in Redis so any API replica can
// answer polls. Completed jobs expire after completedTTL.
type RedisStore struct {
	client       redis.UniversalClient
	completedTTL time.Duration
	inFlightTTL  time.Duration
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client redis.UniversalClient, completedTTL time.Duration) *RedisStore {
	if completedTTL <= 0 {
		completedTTL = DefaultCompletedTTL
	}
	return &RedisStore{
		client:       client,
		completedTTL: completedTTL,
		inFlightTTL:  defaultInFlightTTL,
	}
}

func redisKey(jobID string) string {
	return redisKeyPrefix + jobID
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (Progress, error) {
	raw, err := s.client.Get(ctx, redisKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Progress{}, ErrNotFound
		}
		return Progress{}, fmt.Errorf("redis get %s: %w", jobID, err)
	}
	var p Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return Progress{}, fmt.Errorf("decode progress %s: %w", jobID, err)
	}
	if p.Results == nil {
		p.Results = []analyses.Summary{}
	}
	if p.Failures == nil {
		p.Failures = []Failure{}
	}
	return p, nil
}

func (s *RedisStore) Put(ctx context.Context, progress Progress) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("encode progress %s: %w", progress.JobID, err)
	}
	ttl := s.inFlightTTL
	if progress.Completed {
		ttl = s.completedTTL
	}
	if err := s.client.Set(ctx, redisKey(progress.JobID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", progress.JobID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, jobID string) error {
	if err := s.client.Del(ctx, redisKey(jobID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", jobID, err)
	}
	return nil
}

// Ping checks connectivity for health reporting.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ JobStore = (*RedisStore)(nil)
