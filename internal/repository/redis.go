package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courtline/internal/config"
	"courtline/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisRoleCache caches role lookups in redis with a TTL that bounds the
// staleness window of role and membership changes.
type RedisRoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisRoleCache(client *redis.Client, ttl time.Duration) *RedisRoleCache {
	return &RedisRoleCache{client: client, ttl: ttl}
}

func roleKey(identityID, orgID string) string {
	return fmt.Sprintf("role:%s:%s", orgID, identityID)
}

func (r *RedisRoleCache) Get(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, roleKey(identityID, orgID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role from redis: %w", err)
	}

	var entry models.RoleEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal role entry: %w", err)
	}
	return &entry, nil
}

func (r *RedisRoleCache) Set(ctx context.Context, identityID, orgID string, entry *models.RoleEntry) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal role entry: %w", err)
	}
	if err := r.client.Set(ctx, roleKey(identityID, orgID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set role in redis: %w", err)
	}
	return nil
}

func (r *RedisRoleCache) Invalidate(ctx context.Context, identityID, orgID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, roleKey(identityID, orgID)).Err(); err != nil {
		return fmt.Errorf("failed to delete role from redis: %w", err)
	}
	return nil
}

// Ping verifies the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
