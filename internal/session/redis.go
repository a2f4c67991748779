package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ddportal:session:"

// RedisPersister stores credentials as expiring redis keys.
type RedisPersister struct {
	client redis.UniversalClient
}

func NewRedisPersister(client redis.UniversalClient) *RedisPersister {
	return &RedisPersister{client: client}
}

func (p *RedisPersister) Save(ctx context.Context, id string, sealed []byte, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return p.Delete(ctx, id)
	}
	return p.client.Set(ctx, redisKeyPrefix+id, sealed, ttl).Err()
}

func (p *RedisPersister) Load(ctx context.Context, id string) ([]byte, error) {
	b, err := p.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (p *RedisPersister) Delete(ctx context.Context, id string) error {
	return p.client.Del(ctx, redisKeyPrefix+id).Err()
}
