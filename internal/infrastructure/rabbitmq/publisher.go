package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/zapan/eventbus/internal/domain/event"
)

// Publisher validates and serializes outgoing messages and hands them to
// the shared connection.
type Publisher struct {
	conn *Connection
}

func NewPublisher(conn *Connection) *Publisher {
	return &Publisher{conn: conn}
}

// Publish sends a persistent JSON message to the exchange, fire and
// forget. Validation failures are returned before any network activity.
func (p *Publisher) Publish(ctx context.Context, msg event.Message) error {
	if msg.Expiration != nil && *msg.Expiration < 0 {
		return ErrInvalidExpiration
	}

	body, err := json.Marshal(msg.Payload)
	if err != nil || emptyBody(body) {
		publishErrors.Inc()
		return &EmptyMessageError{
			Exchange:   msg.Exchange,
			RoutingKey: msg.RoutingKey,
			Payload:    msg.Payload,
			Stack:      debug.Stack(),
			Err:        err,
		}
	}

	pub := amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		Body:            body,
	}
	if msg.Expiration != nil {
		pub.Expiration = strconv.FormatInt(*msg.Expiration, 10)
	}
	if len(msg.Headers) > 0 {
		pub.Headers = amqp.Table(msg.Headers)
	}

	if err := p.conn.publish(ctx, msg.Exchange, msg.RoutingKey, pub); err != nil {
		publishErrors.Inc()
		return fmt.Errorf("publish to %s/%s: %w", msg.Exchange, msg.RoutingKey, err)
	}

	eventsPublished.Inc()
	return nil
}

// emptyBody reports a serialization result that carries no message: no
// bytes at all, or the JSON null a nil payload encodes to.
func emptyBody(body []byte) bool {
	return len(body) == 0 || bytes.Equal(body, []byte("null"))
}
