package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/infrastructure/config"
)

const defaultLockPrefix = "wms:lock:"

// releaseScript deletes the key only while it still holds our token, so a
// holder whose TTL expired cannot release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient connects to Redis and verifies the connection with a PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisGenerationLock implements billing.GenerationLock with SET NX PX.
// Suitable when several API or scheduler instances generate invoices.
type RedisGenerationLock struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisGenerationLock creates a lock backed by an existing client
func NewRedisGenerationLock(client redis.UniversalClient, keyPrefix string) *RedisGenerationLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisGenerationLock{client: client, keyPrefix: keyPrefix}
}

// Acquire takes the lock for ttl. ok is false when another holder has it.
func (l *RedisGenerationLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}

var _ billing.GenerationLock = (*RedisGenerationLock)(nil)
