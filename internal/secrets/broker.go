package secrets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Fixed key names the broker credentials are stored under.
const (
	KeyHost  = "rabbit_host"
	KeyPort  = "rabbit_port"
	KeyUser  = "rabbit_user"
	KeyPass  = "rabbit_pass"
	KeyVhost = "rabbit_vhost"
)

type BrokerCredentials struct {
	Host     string
	Port     int
	Username string
	Password string
	VHost    string
}

// LoadBrokerCredentials assembles the broker connection parameters from
// the provider. Host, port, user and password are required; the virtual
// host defaults to "/" when absent.
func LoadBrokerCredentials(ctx context.Context, p Provider) (BrokerCredentials, error) {
	var creds BrokerCredentials

	host, err := p.Get(ctx, KeyHost)
	if err != nil {
		return creds, fmt.Errorf("broker credentials: %w", err)
	}

	portStr, err := p.Get(ctx, KeyPort)
	if err != nil {
		return creds, fmt.Errorf("broker credentials: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return creds, fmt.Errorf("broker credentials: port %q: %w", portStr, err)
	}

	user, err := p.Get(ctx, KeyUser)
	if err != nil {
		return creds, fmt.Errorf("broker credentials: %w", err)
	}

	pass, err := p.Get(ctx, KeyPass)
	if err != nil {
		return creds, fmt.Errorf("broker credentials: %w", err)
	}

	vhost, err := p.Get(ctx, KeyVhost)
	if errors.Is(err, ErrNotFound) {
		vhost = "/"
	} else if err != nil {
		return creds, fmt.Errorf("broker credentials: %w", err)
	}

	creds = BrokerCredentials{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		VHost:    vhost,
	}
	return creds, nil
}
