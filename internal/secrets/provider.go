package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound means the backend has no value for the requested key.
var ErrNotFound = errors.New("secret not found")

// Provider is a key-value secrets lookup.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
}

// EnvProvider resolves secrets from environment variables. Keys are
// uppercased, so "rabbit_host" reads RABBIT_HOST.
type EnvProvider struct{}

func (EnvProvider) Get(_ context.Context, key string) (string, error) {
	v, ok := os.LookupEnv(strings.ToUpper(key))
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return v, nil
}
