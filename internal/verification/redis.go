package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an issued code stays redeemable.
const DefaultTTL = 15 * time.Minute

const keyPrefix = "verification:"

// RedisStore issues codes and keeps their hashes in Redis until they expire
// or are redeemed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store using client. A non-positive ttl uses DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

// Issue generates a code bound to req.Username for req.Purpose.
func (s *RedisStore) Issue(ctx context.Context, req Request) (Code, error) {
	if req.Purpose == "" || req.Username == "" {
		return "", errors.New("purpose and username are required")
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.client.Set(ctx, key(req.Purpose, code), req.Username, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}

	return code, nil
}

// Redeem consumes code and returns the username it was issued for.
// A code can be redeemed once.
func (s *RedisStore) Redeem(ctx context.Context, purpose Purpose, code Code) (string, error) {
	username, err := s.client.GetDel(ctx, key(purpose, code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to redeem verification code: %w", err)
	}

	return username, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func key(purpose Purpose, code Code) string {
	return keyPrefix + string(purpose) + ":" + hashCode(code)
}
