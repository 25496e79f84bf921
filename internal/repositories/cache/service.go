// Package cache provides the Redis-backed cache for wallet snapshots and
// exposes the shared client used by the redemption rate limiter.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creda/internal/models"

	"github.com/redis/go-redis/v9"
)

// CacheService wraps a Redis client with JSON serialization and a
// default TTL.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheService creates a cache service with the given default TTL.
func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Client exposes the underlying Redis client for components sharing the
// connection, such as the rate limiter.
func (s *CacheService) Client() *redis.Client {
	return s.client
}

// Set stores a value under the default TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

// SetWithTTL stores a JSON-encoded value with an explicit TTL.
func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get loads a JSON-encoded value; the bool reports whether the key existed.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal cache value: %w", err)
	}
	return true, nil
}

// Delete removes keys from the cache.
func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func accountKey(accountID string) string {
	return fmt.Sprintf("account:%s", accountID)
}

// CacheAccount stores a wallet snapshot.
func (s *CacheService) CacheAccount(ctx context.Context, account *models.Account) error {
	return s.Set(ctx, accountKey(account.ID), account)
}

// GetAccount loads a cached wallet snapshot, or nil on miss.
func (s *CacheService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	var account models.Account
	found, err := s.Get(ctx, accountKey(accountID), &account)
	if err != nil || !found {
		return nil, err
	}
	return &account, nil
}

// InvalidateAccount drops the wallet snapshot after a committed mutation.
func (s *CacheService) InvalidateAccount(ctx context.Context, accountID string) error {
	return s.Delete(ctx, accountKey(accountID))
}

// HealthCheck pings Redis.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the Redis client connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
