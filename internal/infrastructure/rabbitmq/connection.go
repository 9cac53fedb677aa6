package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/zapan/eventbus/internal/secrets"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFatal
)

// Default operating policy applied whenever a channel is (re)created:
// deliver one unacknowledged message at a time.
const (
	defaultPrefetchSize  = 0
	defaultPrefetchCount = 1
	defaultQosGlobal     = false
)

// Conn and Chan mirror the slice of the amqp091 API the client uses, so
// connection logic is testable without a broker.
type Conn interface {
	Channel() (Chan, error)
	Close() error
}

type Chan interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Dialer func(url string, cfg amqp.Config) (Conn, error)

type Config struct {
	Credentials secrets.BrokerCredentials
	// MaxAttempts bounds the dial retry loop; 0 means the default of 5.
	MaxAttempts int
	DialTimeout time.Duration
	ReadTimeout time.Duration
	RetryDelay  time.Duration
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return 5
	}
	return c.MaxAttempts
}

// Connection owns the single lazily-dialed connection/channel pair shared
// by all publishers in the process. State transitions and channel use are
// serialized by the mutex, so concurrent publishers never dial twice or
// interleave frames on the channel.
type Connection struct {
	mu   sync.Mutex
	cfg  Config
	dial Dialer

	conn  Conn
	ch    Chan
	state State
}

func NewConnection(cfg Config) *Connection {
	return &Connection{
		cfg:  cfg,
		dial: defaultDialer,
	}
}

// NewConnectionWithDialer is used by tests to substitute the broker.
func NewConnectionWithDialer(cfg Config, dial Dialer) *Connection {
	return &Connection{cfg: cfg, dial: dial}
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// publish dials on first use, creates the channel lazily, and performs a
// fire-and-forget publish. The whole sequence holds the lock: at most one
// in-flight connect attempt, and channel frames never interleave.
func (c *Connection) publish(ctx context.Context, exchange, key string, pub amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channelLocked(ctx)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, exchange, key, false, false, pub)
}

// BasicQos applies explicit QoS settings to the channel. Settings with
// any field absent are silently ignored; only a complete triple is
// applied. Documented behavior, intentionally not an error.
func (c *Connection) BasicQos(ctx context.Context, s QosSettings) error {
	if !s.complete() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channelLocked(ctx)
	if err != nil {
		return err
	}
	if err := ch.Qos(*s.PrefetchCount, *s.PrefetchSize, *s.Global); err != nil {
		return fmt.Errorf("basic qos: %w", err)
	}
	return nil
}

// Close tears down channel then connection and returns the state to
// Disconnected. Each already-nil part is a no-op.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch != nil {
		c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.conn = nil
			c.state = StateDisconnected
			return fmt.Errorf("close connection: %w", err)
		}
		c.conn = nil
	}
	c.state = StateDisconnected
	return nil
}

func (c *Connection) channelLocked(ctx context.Context) (Chan, error) {
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	if c.ch != nil {
		return c.ch, nil
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Qos(defaultPrefetchCount, defaultPrefetchSize, defaultQosGlobal); err != nil {
		ch.Close()
		return nil, fmt.Errorf("apply default qos: %w", err)
	}

	c.ch = ch
	return ch, nil
}

// connectLocked runs the bounded dial loop. A previous exhaustion does not
// poison the connection: the next caller gets a fresh attempt budget.
func (c *Connection) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	c.state = StateConnecting
	max := c.cfg.maxAttempts()

	var lastErr error
	for attempt := 1; attempt <= max; attempt++ {
		connectAttempts.Inc()

		conn, err := c.dial(c.url(), c.amqpConfig())
		if err == nil {
			c.conn = conn
			c.state = StateConnected
			slog.Info("broker connected", "host", c.cfg.Credentials.Host, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Warn("broker dial failed", "attempt", attempt, "max", max, "error", err)

		if attempt < max && c.cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				c.state = StateDisconnected
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}

	c.state = StateFatal
	connectsExhausted.Inc()
	return &ConnectionExhaustedError{Attempts: max, Last: lastErr}
}

func (c *Connection) url() string {
	creds := c.cfg.Credentials
	u := amqp.URI{
		Scheme:   "amqp",
		Host:     creds.Host,
		Port:     creds.Port,
		Username: creds.Username,
		Password: creds.Password,
		Vhost:    creds.VHost,
	}
	return u.String()
}

func (c *Connection) amqpConfig() amqp.Config {
	dialTimeout := c.cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	readTimeout := c.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 3 * time.Second
	}

	return amqp.Config{
		// Explicit so the vhost survives regardless of URI encoding.
		Vhost: c.cfg.Credentials.VHost,
		Dial: func(network, addr string) (net.Conn, error) {
			conn, err := net.DialTimeout(network, addr, dialTimeout)
			if err != nil {
				return nil, err
			}
			// Handshake deadline; the library clears it once tuned.
			if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
				conn.Close()
				return nil, err
			}
			return conn, nil
		},
	}
}

type amqpConn struct {
	*amqp.Connection
}

func (c amqpConn) Channel() (Chan, error) {
	return c.Connection.Channel()
}

func defaultDialer(url string, cfg amqp.Config) (Conn, error) {
	conn, err := amqp.DialConfig(url, cfg)
	if err != nil {
		return nil, err
	}
	return amqpConn{conn}, nil
}
