package rabbitmq

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/zapan/eventbus/internal/secrets"
)

type qosCall struct {
	prefetchCount int
	prefetchSize  int
	global        bool
}

type publishedMsg struct {
	exchange   string
	routingKey string
	msg        amqp.Publishing
}

type fakeChan struct {
	qosCalls  []qosCall
	published []publishedMsg
	closed    bool
	qosErr    error
}

func (c *fakeChan) Qos(prefetchCount, prefetchSize int, global bool) error {
	if c.qosErr != nil {
		return c.qosErr
	}
	c.qosCalls = append(c.qosCalls, qosCall{prefetchCount, prefetchSize, global})
	return nil
}

func (c *fakeChan) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.published = append(c.published, publishedMsg{exchange, key, msg})
	return nil
}

func (c *fakeChan) Close() error {
	c.closed = true
	return nil
}

type fakeConn struct {
	ch     *fakeChan
	closed bool
}

func (c *fakeConn) Channel() (Chan, error) { return c.ch, nil }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// fakeBroker is a dialer that fails failures times before handing out a
// connection, counting every attempt.
type fakeBroker struct {
	failures int
	dials    int
	conn     *fakeConn
}

func newFakeBroker(failures int) *fakeBroker {
	return &fakeBroker{
		failures: failures,
		conn:     &fakeConn{ch: &fakeChan{}},
	}
}

func (b *fakeBroker) dial(string, amqp.Config) (Conn, error) {
	b.dials++
	if b.dials <= b.failures {
		return nil, errors.New("connection refused")
	}
	return b.conn, nil
}

func testConnection(b *fakeBroker) *Connection {
	return NewConnectionWithDialer(Config{
		Credentials: secrets.BrokerCredentials{
			Host:     "localhost",
			Port:     5672,
			Username: "guest",
			Password: "guest",
			VHost:    "/",
		},
		MaxAttempts: 5,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	}, b.dial)
}
