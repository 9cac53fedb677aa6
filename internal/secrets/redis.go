package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string // optional
	DB       int    // optional
}

// RedisProvider resolves secrets from plain Redis keys.
type RedisProvider struct {
	client *redis.Client
}

func NewRedisProvider(ctx context.Context, cfg RedisConfig) (*RedisProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisProvider{client: client}, nil
}

func (p *RedisProvider) Get(ctx context.Context, key string) (string, error) {
	v, err := p.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", key, err)
	}
	return v, nil
}

// Client exposes the underlying connection for collaborators that share
// the same Redis instance.
func (p *RedisProvider) Client() *redis.Client { return p.client }

func (p *RedisProvider) Close() error { return p.client.Close() }
