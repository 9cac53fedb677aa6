package rabbitmq

import (
	"errors"
	"fmt"
)

// ErrInvalidExpiration is returned when a message carries a negative
// expiration. The message is never sent.
var ErrInvalidExpiration = errors.New("message expiration must not be negative")

// ConnectionExhaustedError is returned once the dial retry budget is
// spent.
type ConnectionExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ConnectionExhaustedError) Error() string {
	return fmt.Sprintf("broker connection failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ConnectionExhaustedError) Unwrap() error { return e.Last }

// EmptyMessageError is returned when payload serialization fails or
// yields an empty body. It carries the publish target, the offending
// payload and a stack snapshot for diagnostics.
type EmptyMessageError struct {
	Exchange   string
	RoutingKey string
	Payload    any
	Stack      []byte
	Err        error
}

func (e *EmptyMessageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("empty message for %s/%s: %v", e.Exchange, e.RoutingKey, e.Err)
	}
	return fmt.Sprintf("empty message for %s/%s", e.Exchange, e.RoutingKey)
}

func (e *EmptyMessageError) Unwrap() error { return e.Err }
