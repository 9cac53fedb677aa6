package rabbitmq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapan/eventbus/internal/domain/event"
)

func TestConnectRetriesUntilExhausted(t *testing.T) {
	broker := newFakeBroker(100)
	conn := testConnection(broker)
	pub := NewPublisher(conn)

	err := pub.Publish(context.Background(), event.Message{
		Exchange:   "events",
		RoutingKey: "user.created",
		Payload:    map[string]any{"user_id": "42"},
	})

	var exhausted *ConnectionExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 5, exhausted.Attempts)
	assert.NotNil(t, exhausted.Last)

	// No sixth attempt.
	assert.Equal(t, 5, broker.dials)
	assert.Equal(t, StateFatal, conn.State())
}

func TestConnectStopsOnFirstSuccess(t *testing.T) {
	broker := newFakeBroker(2)
	conn := testConnection(broker)
	pub := NewPublisher(conn)

	err := pub.Publish(context.Background(), event.Message{
		Exchange:   "events",
		RoutingKey: "user.created",
		Payload:    map[string]any{"user_id": "42"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, broker.dials)
	assert.Equal(t, StateConnected, conn.State())
}

func TestDefaultQosAppliedOncePerChannel(t *testing.T) {
	broker := newFakeBroker(0)
	conn := testConnection(broker)
	pub := NewPublisher(conn)

	msg := event.Message{
		Exchange:   "events",
		RoutingKey: "user.created",
		Payload:    map[string]any{"user_id": "42"},
	}
	require.NoError(t, pub.Publish(context.Background(), msg))
	require.NoError(t, pub.Publish(context.Background(), msg))

	// One dial, one channel, one default QoS: prefetch one message,
	// no size limit, per-consumer scope.
	assert.Equal(t, 1, broker.dials)
	require.Len(t, broker.conn.ch.qosCalls, 1)
	assert.Equal(t, qosCall{prefetchCount: 1, prefetchSize: 0, global: false}, broker.conn.ch.qosCalls[0])
}

func TestConnectionReusedAcrossPublishes(t *testing.T) {
	broker := newFakeBroker(0)
	conn := testConnection(broker)
	pub := NewPublisher(conn)

	msg := event.Message{
		Exchange:   "events",
		RoutingKey: "order.placed",
		Payload:    map[string]any{"order_id": "1"},
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, pub.Publish(context.Background(), msg))
	}

	assert.Equal(t, 1, broker.dials)
	assert.Len(t, broker.conn.ch.published, 10)
}

func TestCloseTearsDownChannelThenConnection(t *testing.T) {
	broker := newFakeBroker(0)
	conn := testConnection(broker)
	pub := NewPublisher(conn)

	require.NoError(t, pub.Publish(context.Background(), event.Message{
		Exchange:   "events",
		RoutingKey: "user.created",
		Payload:    map[string]any{"user_id": "42"},
	}))

	require.NoError(t, conn.Close())
	assert.True(t, broker.conn.ch.closed)
	assert.True(t, broker.conn.closed)
	assert.Equal(t, StateDisconnected, conn.State())

	// Closing again is a no-op on each already-nil part.
	require.NoError(t, conn.Close())
}

func TestCloseWithoutConnectIsNoOp(t *testing.T) {
	broker := newFakeBroker(0)
	conn := testConnection(broker)

	require.NoError(t, conn.Close())
	assert.Equal(t, 0, broker.dials)
}

func TestPublishReconnectsAfterClose(t *testing.T) {
	broker := newFakeBroker(0)
	conn := testConnection(broker)
	pub := NewPublisher(conn)

	msg := event.Message{
		Exchange:   "events",
		RoutingKey: "user.created",
		Payload:    map[string]any{"user_id": "42"},
	}
	require.NoError(t, pub.Publish(context.Background(), msg))
	require.NoError(t, conn.Close())

	broker.conn = &fakeConn{ch: &fakeChan{}}
	require.NoError(t, pub.Publish(context.Background(), msg))

	assert.Equal(t, 2, broker.dials)
}

func TestBasicQosIgnoresPartialSettings(t *testing.T) {
	broker := newFakeBroker(0)
	conn := testConnection(broker)

	count := 10
	err := conn.BasicQos(context.Background(), QosSettings{PrefetchCount: &count})

	require.NoError(t, err)
	// Incomplete settings never touch the broker.
	assert.Equal(t, 0, broker.dials)
}

func TestBasicQosAppliesCompleteSettings(t *testing.T) {
	broker := newFakeBroker(0)
	conn := testConnection(broker)

	size, count, global := 0, 10, false
	err := conn.BasicQos(context.Background(), QosSettings{
		PrefetchSize:  &size,
		PrefetchCount: &count,
		Global:        &global,
	})
	require.NoError(t, err)

	calls := broker.conn.ch.qosCalls
	require.Len(t, calls, 2) // default on channel creation, then explicit
	assert.Equal(t, qosCall{prefetchCount: 10, prefetchSize: 0, global: false}, calls[1])
}

func TestExhaustionDoesNotPoisonNextAttempt(t *testing.T) {
	broker := newFakeBroker(5)
	conn := testConnection(broker)
	pub := NewPublisher(conn)

	msg := event.Message{
		Exchange:   "events",
		RoutingKey: "user.created",
		Payload:    map[string]any{"user_id": "42"},
	}

	var exhausted *ConnectionExhaustedError
	require.ErrorAs(t, pub.Publish(context.Background(), msg), &exhausted)

	// The broker recovered; the next call gets a fresh budget.
	require.NoError(t, pub.Publish(context.Background(), msg))
	assert.Equal(t, StateConnected, conn.State())
}
