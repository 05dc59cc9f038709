package noncesvc

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
)

const keyPrefix = "hrms:qr:nonce:"

// RedisStore remembers claimed nonces in redis, shared by every API instance.
type RedisStore struct {
	client *redis.Client
}

var _ attendance.NonceStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient connects to the configured redis and pings it.
func NewRedisClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Claim sets the nonce key only if it does not exist yet.
func (s *RedisStore) Claim(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, keyPrefix+nonce, "1", ttl).Result()
}
