package infrastructure

import (
	"context"
	"fmt"

	"github.com/zapan/eventbus/internal/config"
	"github.com/zapan/eventbus/internal/infrastructure/rabbitmq"
	"github.com/zapan/eventbus/internal/secrets"
)

// Factory lazily constructs the process-wide infrastructure: the secrets
// provider and the single shared broker connection. Accessors are
// memoized, so every caller observes the same instances.
type Factory struct {
	cfg      *config.Config
	provider secrets.Provider
	redis    *secrets.RedisProvider
	conn     *rabbitmq.Connection
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

func (f *Factory) Secrets(ctx context.Context) (secrets.Provider, error) {
	if f.provider != nil {
		return f.provider, nil
	}

	switch f.cfg.Secrets.Backend {
	case "", "env":
		f.provider = secrets.EnvProvider{}
	case "redis":
		provider, err := secrets.NewRedisProvider(ctx, secrets.RedisConfig{
			Addr: f.cfg.Secrets.RedisAddr,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init redis secrets: %w", err)
		}
		f.redis = provider
		f.provider = provider
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", f.cfg.Secrets.Backend)
	}

	return f.provider, nil
}

// Redis returns the shared Redis client when the redis secrets backend is
// active, nil otherwise.
func (f *Factory) Redis() *secrets.RedisProvider {
	return f.redis
}

func (f *Factory) Broker(ctx context.Context) (*rabbitmq.Connection, error) {
	if f.conn != nil {
		return f.conn, nil
	}

	provider, err := f.Secrets(ctx)
	if err != nil {
		return nil, err
	}

	creds, err := secrets.LoadBrokerCredentials(ctx, provider)
	if err != nil {
		return nil, err
	}

	f.conn = rabbitmq.NewConnection(rabbitmq.Config{
		Credentials: creds,
		MaxAttempts: f.cfg.Rabbit.MaxConnectAttempts,
		DialTimeout: f.cfg.Rabbit.DialTimeout.Std(),
		ReadTimeout: f.cfg.Rabbit.ReadTimeout.Std(),
		RetryDelay:  f.cfg.Rabbit.RetryDelay.Std(),
	})
	return f.conn, nil
}

func (f *Factory) Close() {
	if f.conn != nil {
		f.conn.Close()
	}
	if f.redis != nil {
		f.redis.Close()
	}
}
