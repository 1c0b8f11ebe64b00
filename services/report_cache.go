package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lexora/lexora_backend/models"
)

const reportKeyPrefix = "lexora:report:"

// ReportCache stores rendered reports as JSON
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidateAll(ctx context.Context) error
}

// RedisReportCache is a ReportCache on Redis. A nil client disables it.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, reportKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached report: %w", err)
	}
	return true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, value interface{}) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, reportKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached report
func (c *RedisReportCache) InvalidateAll(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, reportKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// ReportInvalidator drops cached reports after registrations and signups
type ReportInvalidator struct {
	cache ReportCache
}

func NewReportInvalidator(cache ReportCache) *ReportInvalidator {
	return &ReportInvalidator{cache: cache}
}

func (r *ReportInvalidator) OnCustomerRegistered(ctx context.Context, _ *CascadeResult, _ *models.User) error {
	return r.cache.InvalidateAll(ctx)
}

func (r *ReportInvalidator) OnSignup(ctx context.Context, _ *models.User, _ *models.User) error {
	return r.cache.InvalidateAll(ctx)
}
